package service

import (
	"context"
	"testing"

	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
)

func TestNotificationService_HandleDeliveryEvent(t *testing.T) {
	row := &model.EmailHistory{
		EmailType: constants.ActivationMailTag,
		MessageID: "msg-1",
		Status:    constants.MailEventSent,
		Email:     "student1@example.com",
		FromEmail: "noreply@prep.study",
	}
	history := &fakeHistory{rows: []*model.EmailHistory{row}}
	svc := NewNotificationService(history)

	err := svc.HandleDeliveryEvent(context.Background(), &dto.DeliveryEvent{
		MessageID: "msg-1",
		Email:     "student1@example.com",
		Event:     constants.MailEventDelivered,
		Payload:   map[string]interface{}{"smtp_code": "250"},
	})
	if err != nil {
		t.Fatalf("HandleDeliveryEvent returned error: %v", err)
	}
	if row.Status != constants.MailEventDelivered {
		t.Errorf("Expected status %q, got %q", constants.MailEventDelivered, row.Status)
	}
	if len(row.ProviderResponse) == 0 {
		t.Error("Expected the provider payload to be recorded")
	}
}

func TestNotificationService_HandleDeliveryEvent_UnknownEvent(t *testing.T) {
	svc := NewNotificationService(&fakeHistory{})
	err := svc.HandleDeliveryEvent(context.Background(), &dto.DeliveryEvent{
		MessageID: "msg-1",
		Email:     "student1@example.com",
		Event:     "exploded",
	})
	if err != apperrors.ErrInvalidInput {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestNotificationService_HandleDeliveryEvent_UnknownMessage(t *testing.T) {
	svc := NewNotificationService(&fakeHistory{})
	err := svc.HandleDeliveryEvent(context.Background(), &dto.DeliveryEvent{
		MessageID: "ghost",
		Email:     "student1@example.com",
		Event:     constants.MailEventDelivered,
	})
	if err != apperrors.ErrResourceNotFound {
		t.Errorf("Expected ErrResourceNotFound, got %v", err)
	}
}

func TestNotificationService_History(t *testing.T) {
	history := &fakeHistory{}
	for i := 0; i < 3; i++ {
		history.rows = append(history.rows, &model.EmailHistory{
			EmailType: constants.ActivationMailTag,
			MessageID: "msg",
			Status:    constants.MailEventSent,
			Email:     "student1@example.com",
			FromEmail: "noreply@prep.study",
		})
	}
	history.rows = append(history.rows, &model.EmailHistory{
		Email:  "other@example.com",
		Status: constants.MailEventSent,
	})
	svc := NewNotificationService(history)

	res, total, pageTotal, err := svc.History(context.Background(), "student1@example.com", 2, 0)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected total 3, got %d", total)
	}
	if pageTotal != 2 {
		t.Errorf("Expected 2 pages, got %d", pageTotal)
	}
	if len(res) != 2 {
		t.Errorf("Expected 2 rows on the first page, got %d", len(res))
	}
	for _, item := range res {
		if item.Email != "student1@example.com" {
			t.Errorf("History leaked a row for %q", item.Email)
		}
	}
}

func TestNotificationService_History_StoreFailure(t *testing.T) {
	svc := NewNotificationService(&fakeHistory{listErr: errTest})
	if _, _, _, err := svc.History(context.Background(), "student1@example.com", 10, 0); err == nil {
		t.Error("Expected an error when the store fails")
	}
}
