package gateway

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("gateway")

// PaymentGateway is a stand-in for a real payment provider. It approves
// every charge unless the payment method carries a test trigger, which lets
// staging exercise the declined and unavailable paths end to end.
type PaymentGateway struct {
	declineTrigger string
	failTrigger    string
}

func NewPaymentGateway() *PaymentGateway {
	return &PaymentGateway{
		declineTrigger: "decline",
		failTrigger:    "unavailable",
	}
}

func (g *PaymentGateway) Charge(ctx context.Context, planID string, paymentMethod string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Charge")
	defer span.End()

	if strings.Contains(paymentMethod, g.failTrigger) {
		return false, errPaymentProviderDown
	}
	if strings.Contains(paymentMethod, g.declineTrigger) {
		slog.InfoContext(ctx, "charge declined",
			slog.String("plan", planID),
		)
		return false, nil
	}

	slog.InfoContext(ctx, "charge approved",
		slog.String("plan", planID),
	)
	return true, nil
}

type providerError string

func (e providerError) Error() string { return string(e) }

const errPaymentProviderDown = providerError("payment provider unavailable")
