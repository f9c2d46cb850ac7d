package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/lumiere-booking/internal/recommend"
)

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, "sore back", recommend.Recommendation{ServiceID: "s2", Reasoning: "Targets deep muscle tension."}, true, 1234*time.Microsecond)

	out := buf.String()
	assert.Contains(t, out, "Query:   sore back")
	assert.Contains(t, out, "Elapsed: 1ms")
	assert.Contains(t, out, "Service: Deep Tissue Massage (Therapy, 60 mins, $90.00)")
	assert.Contains(t, out, "Why:     Targets deep muscle tension.")
}

func TestPrintResultNoRecommendation(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, "???", recommend.Recommendation{}, false, 0)

	assert.Contains(t, buf.String(), "No recommendation")
	assert.NotContains(t, buf.String(), "Service:")
}
