package cart

import (
	"encoding/json"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const DefaultNamespace = "pottery-cart"

// Key is the persistence key of identity's cart.
func Key(namespace string, identity domain.Identity) string {
	return fmt.Sprintf("%s-%s", namespace, identity.Key())
}

func Encode(lines []domain.CartLine) (string, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("marshal cart failed: %w", err)
	}
	return string(data), nil
}

// Decode parses a persisted cart. Callers treat any error as an empty cart.
func Decode(raw string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return lines, nil
}
