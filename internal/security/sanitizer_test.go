package security

import (
	"strings"
	"testing"

	"taxitalk/internal/config"
)

func TestSanitizeEmail(t *testing.T) {
	s := NewSanitizer(config.PIIFilterConfig{
		Enabled:      true,
		FilterEmails: true,
	})

	input := "Mi correo es john@example.com y también jane@test.org"
	result := s.Sanitize(input)

	if result == input {
		t.Fatal("expected sanitization to change the input")
	}
	if strings.Contains(result, "john@example.com") {
		t.Fatal("email was not sanitized")
	}
	if !strings.Contains(result, "[EMAIL_1]") || !strings.Contains(result, "[EMAIL_2]") {
		t.Fatalf("expected numbered EMAIL placeholders, got: %s", result)
	}
}

func TestSanitizePhone(t *testing.T) {
	s := NewSanitizer(config.PIIFilterConfig{
		Enabled:      true,
		FilterPhones: true,
	})

	input := "Llámame al 555-123-4567"
	result := s.Sanitize(input)

	if strings.Contains(result, "555-123-4567") {
		t.Fatal("phone was not sanitized")
	}
}

func TestSanitizeDisabled(t *testing.T) {
	s := NewSanitizer(config.PIIFilterConfig{
		Enabled: false,
	})

	input := "john@example.com 555-123-4567"
	result := s.Sanitize(input)

	if result != input {
		t.Fatal("disabled sanitizer should not modify input")
	}
}

func TestSanitizeCards(t *testing.T) {
	s := NewSanitizer(config.PIIFilterConfig{
		Enabled:     true,
		FilterCards: true,
	})

	input := "Mi tarjeta es 4111-1111-1111-1111"
	result := s.Sanitize(input)

	if strings.Contains(result, "4111") {
		t.Fatal("card number was not sanitized")
	}
}

func TestSanitizeResetRestartsNumbering(t *testing.T) {
	s := NewSanitizer(config.PIIFilterConfig{
		Enabled:      true,
		FilterEmails: true,
	})

	s.Sanitize("uno@example.com")
	s.Reset()
	result := s.Sanitize("dos@example.com")

	if !strings.Contains(result, "[EMAIL_1]") {
		t.Fatalf("expected numbering to restart after reset, got: %s", result)
	}
}
