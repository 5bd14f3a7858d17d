package protocol_test

import (
	"github.com/2beens/protocolengine/internal/protocol"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	ageBrackets = []string{"6–9", "10–13", "14–18", "19+"}
	genders     = []string{"Male", "Female"}
	frequencies = []string{"1-2", "3-4", "5+"}
	intensities = []string{"Low", "Medium", "High"}
	sessions    = []string{"0", "1", "2", "3"}
	years       = []string{"<1", "1-2", "3-5", "5+"}
	handedness  = []string{"Left-handed", "Right-handed"}
	targets     = []string{
		protocol.TargetBasic,
		protocol.TargetRecovery,
		protocol.TargetEndurance,
		protocol.TargetPerformance,
	}
)

// fakeRawProfile builds a complete questionnaire answer set, secondary sport included.
func fakeRawProfile(f *gofakeit.Faker) protocol.RawProfile {
	return protocol.RawProfile{
		"Age Bracket":          f.RandomString(ageBrackets),
		"Gender":               f.RandomString(genders),
		"Primary Sport":        f.RandomString([]string{"Tennis", "Soccer", "Swimming"}),
		"Training Frequency":   f.RandomString(frequencies),
		"Training Intensity":   f.RandomString(intensities),
		"Coaching Sessions":    f.RandomString(sessions),
		"Years of Practice":    f.RandomString(years),
		"Secondary Sport":      f.RandomString([]string{"Volleyball", "Basketball", "Judo"}),
		"Training Frequency 2": f.RandomString(frequencies),
		"Training Intensity 2": f.RandomString(intensities),
		"Coaching Sessions 2":  f.RandomString(sessions),
		"Years of Practice 2":  f.RandomString(years),
		"Allergens":            f.RandomString([]string{"None", "Lactose", "Gluten", "Nuts"}),
		"Medical History":      f.RandomString([]string{"None", "Asthma", "Anemia"}),
		"Handedness":           f.RandomString(handedness),
		"Target":               f.RandomString(targets),
	}
}

func fakeRecord(f *gofakeit.Faker) *protocol.Record {
	return &protocol.Record{
		Profile: protocol.Normalize(fakeRawProfile(f)),
		Payload: fakePayload(f),
	}
}

func fakePayload(f *gofakeit.Faker) protocol.Payload {
	return protocol.Payload{
		RecommendedStack: f.Word() + " Stack",
		Protocol:         f.Word() + ", " + f.Word(),
		Timing:           f.Sentence(4),
		Dosage:           f.Sentence(5),
		NutritionAdvice:  f.Sentence(8),
	}
}

// distinctRecords returns n records with pairwise different profiles.
func distinctRecords(f *gofakeit.Faker, n int) []*protocol.Record {
	seen := map[protocol.Key]bool{}
	records := make([]*protocol.Record, 0, n)
	for len(records) < n {
		r := fakeRecord(f)
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		records = append(records, r)
	}
	return records
}
