package document

// UploadMetadata carries the non-file form fields of a document upload.
// Which fields matter depends on the category: personal documents carry a
// document number, financial ones bank details, address ones an address.
type UploadMetadata struct {
	DocumentType   string `form:"document_type" binding:"required"`
	DocumentNumber string `form:"document_number"`
	BankName       string `form:"bank_name"`
	AccountNumber  string `form:"account_number"`
	MonthYear      string `form:"month_year"`
	Address        string `form:"address"`
}

type ReviewEntryRequest struct {
	Category string `json:"category" binding:"required"`
	EntryID  string `json:"entry_id" binding:"required"`
	Notes    string `json:"notes"`
	Reason   string `json:"reason"`
}

type DeleteEntryRequest struct {
	Category string `json:"category" binding:"required"`
	EntryID  string `json:"entry_id" binding:"required"`
}

type LinkVerificationRequest struct {
	DocumentNumber string `json:"document_number" binding:"required"`
}
