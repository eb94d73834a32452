package square

import (
	"context"
	"testing"

	sq "github.com/square/square-go-sdk"

	"github.com/Brooksey3011/military-tees-uk/pkg/config"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "square-test"})
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if _, err := NewClient(ctx, config.SquareConfig{AccessToken: "tok", LocationID: "loc"}, nil); err != errLoggerRequired {
		t.Fatalf("expected logger error, got %v", err)
	}
	if _, err := NewClient(ctx, config.SquareConfig{LocationID: "loc"}, testLogger()); err != errAccessTokenRequired {
		t.Fatalf("expected token error, got %v", err)
	}
	if _, err := NewClient(ctx, config.SquareConfig{AccessToken: "tok"}, testLogger()); err != errLocationRequired {
		t.Fatalf("expected location error, got %v", err)
	}
	if _, err := NewClient(ctx, config.SquareConfig{AccessToken: "tok", LocationID: "loc", Env: "staging"}, testLogger()); err != errInvalidSquareEnv {
		t.Fatalf("expected env error, got %v", err)
	}

	client, err := NewClient(ctx, config.SquareConfig{AccessToken: "tok", LocationID: "loc", Env: "Sandbox"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Environment() != sandboxEnv {
		t.Fatalf("unexpected env %q", client.Environment())
	}
	if client.LocationID() != "loc" {
		t.Fatalf("unexpected location %q", client.LocationID())
	}
}

func TestPaymentRequestMapping(t *testing.T) {
	t.Parallel()

	params := PaymentCreateParams{
		AmountPence: 4998,
		Currency:    "gbp",
		SourceID:    "cnon:token",
		Note:        "order 42",
		ReferenceID: "order-42",
	}

	req := params.toSquareRequest("loc-1", "key-1")
	if req.SourceID != "cnon:token" {
		t.Fatalf("source not mapped: %+v", req)
	}
	if req.AmountMoney == nil || *req.AmountMoney.Amount != 4998 {
		t.Fatalf("amount not mapped: %+v", req.AmountMoney)
	}
	if *req.AmountMoney.Currency != sq.Currency("GBP") {
		t.Fatalf("currency should be uppercased, got %v", *req.AmountMoney.Currency)
	}
	if req.LocationID == nil || *req.LocationID != "loc-1" {
		t.Fatalf("location not mapped: %+v", req)
	}
}

func TestMapSquareErrorFallsBackToDependency(t *testing.T) {
	t.Parallel()

	c := &Client{logger: testLogger()}
	err := c.mapSquareError(context.DeadlineExceeded, "create payment")

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestRedaction(t *testing.T) {
	t.Parallel()

	c := &Client{logger: testLogger()}
	if c.redact("source_id", "cnon:secret") != "[REDACTED]" {
		t.Fatal("source ids should be redacted")
	}
	if c.redact("amount_pence", 4998) != 4998 {
		t.Fatal("amounts should pass through")
	}
}
