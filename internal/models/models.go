package models

// LoginRequest - модель для входа
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse - модель ответа при входе
type LoginResponse struct {
	Token string `json:"token"`
}

// RegisterRequest - модель для регистрации
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterResponse - модель ответа при регистрации
type RegisterResponse struct {
	User User `json:"user"`
}

// CreateBookingRequest - модель для создания бронирования
type CreateBookingRequest struct {
	SessionID    int64 `json:"session_id" binding:"required"`
	Participants int   `json:"participants" binding:"required"`
}

// CreateBookingResponse - модель ответа при создании бронирования
type CreateBookingResponse struct {
	BookingID    int64  `json:"booking_id"`
	Status       string `json:"status"`
	TotalPrice   int64  `json:"total_price"`
	PreviewPrice int64  `json:"preview_price"`
}

// InitiatePaymentRequest - модель для инициации платежа
type InitiatePaymentRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

// InitiatePaymentResponse - модель ответа с URL платежной страницы
type InitiatePaymentResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// CancelBookingResponse - модель ответа при отмене бронирования
type CancelBookingResponse struct {
	Message string `json:"message"`
}
