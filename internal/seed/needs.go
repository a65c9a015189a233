package seed

import (
	"context"
	"fmt"

	"samaajseva/internal/ledger"
	"samaajseva/pkg/types"

	"github.com/sirupsen/logrus"
)

type fakeNeedSeed struct {
	Attributes types.NeedAttributes
	Committed  float64
}

// fakeNeeds is listed oldest first; the ledger prepends so the first entry
// ends up last.
var fakeNeeds = []fakeNeedSeed{
	{
		Attributes: types.NeedAttributes{
			Title:          "Blankets for Winter Shelter",
			Domain:         "Clothes",
			Description:    "Need 100 blankets for the upcoming winter season in Delhi.",
			State:          "Delhi",
			District:       "New Delhi",
			PeopleAffected: 100,
			ResourceType:   "Blankets",
			UrgencyReason:  "Cold wave",
			Timeline:       "Within a month",
			QuantityNeeded: 100,
			Urgency:        types.UrgencyMedium,
			Confidence:     0.72,
		},
		Committed: 100,
	},
	{
		Attributes: types.NeedAttributes{
			Title:          "Volunteer Tutors for Primary School",
			Domain:         "Volunteering",
			Description:    "Require 10 volunteers to teach math and science, 2 hours/week.",
			State:          "Maharashtra",
			District:       "Pune",
			PeopleAffected: 60,
			ResourceType:   "Volunteers",
			UrgencyReason:  "Teacher shortage",
			Timeline:       "Ongoing",
			QuantityNeeded: 10,
			Urgency:        types.UrgencyLow,
			Confidence:     0.64,
		},
		Committed: 3,
	},
	{
		Attributes: types.NeedAttributes{
			Title:          "Emergency Food Drive for 50 Families",
			Domain:         "Food",
			Description:    "Need dry rations (rice, lentils, oil) for families displaced by recent floods.",
			State:          "Maharashtra",
			District:       "Mumbai",
			PeopleAffected: 200,
			ResourceType:   "Food Kits",
			UrgencyReason:  "Flood",
			Timeline:       "Immediate",
			QuantityNeeded: 50,
			Urgency:        types.UrgencyHigh,
			Confidence:     0.91,
		},
		Committed: 20,
	},
}

// SeedFakeNeeds posts the demo needs for ngoID and the demo commitments for
// donorID. It does nothing when the NGO already has needs.
func SeedFakeNeeds(ctx context.Context, l *ledger.Ledger, ngoID, donorID string, logger logrus.FieldLogger) error {
	if existing := l.NeedsByNGO(ngoID); len(existing) > 0 {
		logger.WithField("count", len(existing)).Info("skipping fake needs, ngo already has needs")
		return nil
	}

	for _, fakeNeed := range fakeNeeds {
		need, err := l.CreateNeed(ctx, fakeNeed.Attributes, ngoID)
		if err != nil {
			return fmt.Errorf("failed to seed need %q: %w", fakeNeed.Attributes.Title, err)
		}

		if fakeNeed.Committed == 0 {
			continue
		}
		if _, err := l.CommitToNeed(ctx, need.ID, donorID, fakeNeed.Committed); err != nil {
			return fmt.Errorf("failed to seed commitment for %q: %w", fakeNeed.Attributes.Title, err)
		}
	}

	logger.WithField("count", len(fakeNeeds)).Info("fake needs seeded")
	return nil
}
