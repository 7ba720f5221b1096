package dto

type OperationInfo struct {
	Name   string `json:"name"`
	Query  string `json:"query"`
	Target string `json:"target"`
}

type OperationList struct {
	Status     string          `json:"status"`
	Operations []OperationInfo `json:"operations"`
}

type OperationResponse struct {
	API       string `json:"api"`
	Operation string `json:"operation"`
	Status    string `json:"status"`
	RowCount  int    `json:"rowCount"`
	Rows      any    `json:"rows"`
}
