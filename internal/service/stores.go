package service

import (
	"context"

	"thesis-manager/internal/mailer"
	"thesis-manager/internal/model"
)

type AdminStore interface {
	FindByUsername(ctx context.Context, username string) (model.Admin, error)
	FindByID(ctx context.Context, id string) (model.Admin, error)
	Create(ctx context.Context, admin model.Admin) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Count(ctx context.Context) (int, error)
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	Create(ctx context.Context, user model.User) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context) ([]model.User, error)
}

type MailDispatcher interface {
	Dispatch(ctx context.Context, msg mailer.Message) error
}
