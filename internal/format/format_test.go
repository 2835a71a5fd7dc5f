package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corail-backend/internal/models"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "28.00€", FormatPrice(2800))
	assert.Equal(t, "0.00€", FormatPrice(0))
	assert.Equal(t, "12.05€", FormatPrice(1205))
}

func TestParsePriceCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"25.00", 2500},
		{"25", 2500},
		{"28.005", 2800},
		{"19.99", 1999},
		{" 42.5 ", 4250},
		{"12,30", 1230},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriceCents(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "   ", "abc", "NaN"} {
		_, err := ParsePriceCents(bad)
		assert.ErrorIs(t, err, ErrInvalidPrice, bad)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"30 seconds", 30 * time.Second, "À l'instant"},
		{"future", -time.Hour, "À l'instant"},
		{"45 minutes", 45 * time.Minute, "Il y a 45 min"},
		{"90 minutes truncates to hours", 90 * time.Minute, "Il y a 1h"},
		{"23 hours", 23*time.Hour + 59*time.Minute, "Il y a 23h"},
		{"24 hours", 24 * time.Hour, "Hier"},
		{"47 hours", 47 * time.Hour, "Hier"},
		{"48 hours", 48 * time.Hour, "Il y a 2 jours"},
		{"6 days", 6*24*time.Hour + time.Hour, "Il y a 6 jours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now.Add(-tt.ago), now))
		})
	}

	t.Run("older than a week", func(t *testing.T) {
		old := time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC)
		assert.Equal(t, "2 janv., 14:30", RelativeTime(old, now))
	})
}

func TestDates(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "lundi 10 mars 2025 à 14:05", LongDate(ts))
	assert.Equal(t, "10/3", DayMonth(ts))
	assert.Equal(t, "10 mars, 14:05", ShortDate(ts))
}

func TestTimeOfDay(t *testing.T) {
	assert.Equal(t, "14:30", TimeOfDay("2025-01-02 14:30:00"))
	assert.Equal(t, "", TimeOfDay("2025-01-02"))
}

func TestDescribeActivity(t *testing.T) {
	t.Run("public publish shows route and price", func(t *testing.T) {
		d := DescribeActivity(models.ActivityEntry{
			ActivityLog:    models.ActivityLog{ActionType: models.ActionRidePublishedPublic},
			PickupAddress:  "Gare de Lyon",
			DropoffAddress: "Orly",
			PriceCents:     4500,
		})
		assert.Equal(t, "megaphone", d.Icon)
		assert.Equal(t, "Course publiée sur la marketplace", d.Title)
		assert.Equal(t, "Gare de Lyon → Orly", d.Subtitle)
		assert.Equal(t, "45.00€", d.Badge)
	})

	t.Run("claim costs a credit", func(t *testing.T) {
		d := DescribeActivity(models.ActivityEntry{ActivityLog: models.ActivityLog{ActionType: models.ActionRideClaimed}})
		assert.Equal(t, "Course réclamée", d.Subtitle)
		assert.Equal(t, "-1 [C]", d.Badge)
	})

	t.Run("completion bonus only for marketplace rides", func(t *testing.T) {
		pub := DescribeActivity(models.ActivityEntry{
			ActivityLog:    models.ActivityLog{ActionType: models.ActionRideCompleted},
			RideVisibility: models.VisibilityGroup,
		})
		assert.Equal(t, "+1 [C]", pub.Badge)

		personal := DescribeActivity(models.ActivityEntry{
			ActivityLog:    models.ActivityLog{ActionType: models.ActionRideCompleted},
			RideVisibility: models.VisibilityPersonal,
		})
		assert.Empty(t, personal.Badge)
	})

	t.Run("deleted ride ignores addresses", func(t *testing.T) {
		d := DescribeActivity(models.ActivityEntry{
			ActivityLog:    models.ActivityLog{ActionType: models.ActionRideDeleted},
			PickupAddress:  "A",
			DropoffAddress: "B",
		})
		assert.Equal(t, "Course retirée", d.Subtitle)
	})

	t.Run("unknown action is title cased", func(t *testing.T) {
		d := DescribeActivity(models.ActivityEntry{ActivityLog: models.ActivityLog{ActionType: "GROUP_JOINED"}})
		assert.Equal(t, "Group Joined", d.Title)
		assert.Equal(t, "Action", d.Subtitle)
		assert.Equal(t, "#64748b", d.Color)
	})
}
