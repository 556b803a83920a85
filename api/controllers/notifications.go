package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tahanancrafts/marketplace-backend/api/responses"
	notificationsvc "github.com/tahanancrafts/marketplace-backend/internal/notifications"
	"github.com/tahanancrafts/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/tahanancrafts/marketplace-backend/pkg/errors"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/pagination"
)

// ListNotifications returns the user's notification page, newest first.
func ListNotifications(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newNotificationPage(list, params.Limit))
	}
}

// MarkNotificationRead stamps a single notification as read.
func MarkNotificationRead(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		notificationID, err := uuidParam(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), userID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

// UnreadCount returns how many notifications the user has not read yet.
func UnreadCount(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID, err := userIDFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.CountUnread(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}

type notificationPage struct {
	Notifications []notificationResponse `json:"notifications"`
	NextCursor    *string                `json:"next_cursor,omitempty"`
}

type notificationResponse struct {
	NotificationID uuid.UUID  `json:"notification_id"`
	OrderID        *uuid.UUID `json:"order_id,omitempty"`
	Event          string     `json:"event"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func newNotificationPage(list []models.Notification, limit int) notificationPage {
	normalized := pagination.NormalizeLimit(limit)
	hasMore := len(list) > normalized
	if hasMore {
		list = list[:normalized]
	}

	page := notificationPage{Notifications: make([]notificationResponse, 0, len(list))}
	for _, n := range list {
		page.Notifications = append(page.Notifications, notificationResponse{
			NotificationID: n.ID,
			OrderID:        n.OrderID,
			Event:          string(n.Event),
			Title:          n.Title,
			Body:           n.Body,
			ReadAt:         n.ReadAt,
			CreatedAt:      n.CreatedAt,
		})
	}
	if hasMore && len(page.Notifications) > 0 {
		last := list[len(list)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &cursor
	}
	return page
}
