package auth

import (
	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// LoginParams are the credentials collected by the Authentication flow.
type LoginParams struct {
	UserID   string
	Password string
}

// ParseLoginParams reads the identifier (card number aliases accepted) and
// the password.
func ParseLoginParams(req *bot.Request) LoginParams {
	return LoginParams{
		UserID:   req.String(session.KeyUserID, "card_number", "library_card"),
		Password: req.String(session.KeyPassword),
	}
}
