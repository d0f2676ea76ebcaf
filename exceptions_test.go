package main

import (
	"testing"

	"github.com/contractsync/backend/models"
)

func TestExceptionUpdateColumns_AbsentMessageLeavesStoredOne(t *testing.T) {
	updates := exceptionUpdateColumns(models.ExceptionStatusUpdate{
		Status: models.ExceptionStatusAcknowledged,
	})

	if updates["status"] != models.ExceptionStatusAcknowledged {
		t.Fatalf("status = %v, want acknowledged", updates["status"])
	}
	if _, present := updates["message"]; present {
		t.Fatal("absent message must not touch the message column")
	}
}

func TestExceptionUpdateColumns_SuppliedMessageReplaces(t *testing.T) {
	updates := exceptionUpdateColumns(models.ExceptionStatusUpdate{
		Status:  models.ExceptionStatusResolved,
		Message: "credit memo issued",
	})

	if updates["status"] != models.ExceptionStatusResolved {
		t.Fatalf("status = %v, want resolved", updates["status"])
	}
	if updates["message"] != "credit memo issued" {
		t.Fatalf("message = %v, want replacement", updates["message"])
	}
}
