package admin

type DecideKYCRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
