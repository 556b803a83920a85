package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tahanancrafts/marketplace-backend/api/middleware"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
)

func userIDFrom(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func artisanIDFrom(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ArtisanIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "artisan context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid artisan id")
	}
	return id, nil
}
