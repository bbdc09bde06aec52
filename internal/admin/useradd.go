package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

type registrar interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
}

// AddUser asks for the email when it is empty, then for the password twice,
// and registers the account.
func AddUser(ctx context.Context, users registrar, reader *bufio.Reader, w io.Writer, email string) (*models.User, error) {
	var err error
	if email == "" {
		if email, err = GetSimpleText(reader, "Enter user email", w); err != nil {
			return nil, err
		}
	}

	password, err := GetPassword("Enter password", w)
	if err != nil {
		return nil, err
	}
	confirm, err := GetPassword("Repeat password", w)
	if err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	user, err := users.Register(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", email, err)
	}

	fmt.Fprintf(w, "Created user %s (%s)\n", user.Email, user.ID)
	return user, nil
}
