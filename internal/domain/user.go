package domain

// UserInfo — запись сессии пользователя, которую хранит клиент.
type UserInfo struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token,omitempty"`
}
