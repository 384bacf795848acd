package store

import (
	"testing"

	"rrcore/internal/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) *Store {
		return New(Config{})
	})
}
