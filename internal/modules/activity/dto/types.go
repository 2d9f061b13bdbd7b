package dto

type ActivityOutput struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
