package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Accepted message length in runes.
const (
	MinTextLength = 10
	MaxTextLength = 2000
)

var (
	// ErrInvalidText is returned when a message is too short or too long to score.
	ErrInvalidText = errors.New("invalid text")

	// ErrInvalidFilter is returned for an unknown list filter value.
	ErrInvalidFilter = errors.New("invalid filter")
)

var textLength metric.Int64Histogram

func init() {
	var err error
	textLength, err = otel.Meter("msgrisk/usecase").Int64Histogram("msgrisk.message.length",
		metric.WithDescription("Length of submitted messages."),
		metric.WithUnit("{rune}"),
	)
	if err != nil {
		otel.Handle(err)
	}
}

func validateText(ctx context.Context, text string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if textLength != nil {
		textLength.Record(ctx, int64(n))
	}
	switch {
	case n < MinTextLength:
		return fmt.Errorf("%w: at least %d characters required, got %d", ErrInvalidText, MinTextLength, n)
	case n > MaxTextLength:
		return fmt.Errorf("%w: at most %d characters allowed, got %d", ErrInvalidText, MaxTextLength, n)
	}
	return nil
}
