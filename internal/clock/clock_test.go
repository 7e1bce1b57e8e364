package clock

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	c := NewFixed(civil.Date{Year: 2024, Month: time.January, Day: 31})

	assert.Equal(t, civil.Date{Year: 2024, Month: time.January, Day: 31}, c.Today())

	c.Advance(1)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 1}, c.Today())

	c.Set(civil.Date{Year: 2025, Month: time.March, Day: 3})
	assert.Equal(t, civil.Date{Year: 2025, Month: time.March, Day: 3}, c.Today())
}

func TestSystemDefaultsToUTC(t *testing.T) {
	c := NewSystem(nil)

	assert.Equal(t, civil.DateOf(time.Now().UTC()), c.Today())
}
