package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// sports forced on every profile; the questionnaire pilot only ships soccer/basketball protocols
// TODO: drop the override once product confirms multi-sport protocols are live
const (
	PrimarySport   = "Soccer"
	SecondarySport = "Basketball"
)

// secondary training defaults, used when no secondary sport was given
const (
	DefaultTrainingFrequency2 = "1-2"
	DefaultTrainingIntensity2 = "Low"
	DefaultCoachingSessions2  = "0"
	DefaultYearsOfPractice2   = "<1"
	DefaultAllergens          = "None"
	DefaultMedicalHistory     = "None"
)

// RawProfile is the questionnaire answers as received from the UI,
// keyed by the human-readable question labels.
type RawProfile map[string]any

// Profile is the canonical, normalized questionnaire profile.
// All 16 attributes take part in exact matching.
type Profile struct {
	AgeBracket         string `json:"ageBracket"`
	Gender             string `json:"gender"`
	PrimarySport       string `json:"primarySport"`
	TrainingFrequency  string `json:"trainingFrequency"`
	TrainingIntensity  string `json:"trainingIntensity"`
	CoachingSessions   string `json:"coachingSessions"`
	YearsOfPractice    string `json:"yearsOfPractice"`
	SecondarySport     string `json:"secondarySport"`
	TrainingFrequency2 string `json:"trainingFrequency2"`
	TrainingIntensity2 string `json:"trainingIntensity2"`
	CoachingSessions2  string `json:"coachingSessions2"`
	YearsOfPractice2   string `json:"yearsOfPractice2"`
	Allergens          string `json:"allergens"`
	MedicalHistory     string `json:"medicalHistory"`
	Handedness         string `json:"handedness"`
	Target             string `json:"target"`
}

// Key is the comparable 16-tuple of a profile, in column order.
type Key [16]string

// attribute labels, in the same order as Key and the stored columns
var attributeNames = [16]string{
	"Age Bracket",
	"Gender",
	"Primary Sport",
	"Training Frequency",
	"Training Intensity",
	"Coaching Sessions",
	"Years of Practice",
	"Secondary Sport",
	"Training Frequency 2",
	"Training Intensity 2",
	"Coaching Sessions 2",
	"Years of Practice 2",
	"Allergens",
	"Medical History",
	"Handedness",
	"Target",
}

// AttributeNames returns the 16 matching attribute labels in column order.
func AttributeNames() [16]string {
	return attributeNames
}

// rawAliases maps a label to the alternative keys accepted in a raw profile.
var rawAliases = map[string][]string{
	"Age Bracket":          {"Age Bracket", "AgeBracket", "ageBracket"},
	"Gender":               {"Gender", "gender"},
	"Primary Sport":        {"Primary Sport", "PrimarySport", "primarySport"},
	"Training Frequency":   {"Training Frequency", "TrainingFrequency", "trainingFrequency"},
	"Training Intensity":   {"Training Intensity", "TrainingIntensity", "trainingIntensity"},
	"Coaching Sessions":    {"Coaching Sessions", "CoachingSessions", "coachingSessions"},
	"Years of Practice":    {"Years of Practice", "YearsOfPractice", "yearsOfPractice"},
	"Secondary Sport":      {"Secondary Sport", "SecondarySport", "secondarySport"},
	"Training Frequency 2": {"Training Frequency 2", "TrainingFrequency2", "trainingFrequency2"},
	"Training Intensity 2": {"Training Intensity 2", "TrainingIntensity2", "trainingIntensity2"},
	"Coaching Sessions 2":  {"Coaching Sessions 2", "CoachingSessions2", "coachingSessions2"},
	"Years of Practice 2":  {"Years of Practice 2", "YearsOfPractice2", "yearsOfPractice2"},
	"Allergens":            {"Allergens", "allergens"},
	"Medical History":      {"Medical History", "MedicalHistory", "medicalHistory"},
	"Handedness":           {"Handedness", "handedness"},
	"Target":               {"Target", "target"},
}

// lookup returns the first present raw value for the given label.
func (raw RawProfile) lookup(label string) (any, bool) {
	for _, k := range rawAliases[label] {
		if v, ok := raw[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Get returns the raw value for a label rendered as a string; missing and nil values are "".
func (raw RawProfile) Get(label string) string {
	v, _ := raw.lookup(label)
	return stringify(v)
}

func (raw RawProfile) falsy(label string) bool {
	v, ok := raw.lookup(label)
	if !ok || v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Normalize maps a raw questionnaire profile to its canonical form.
// It never fails: missing required answers stay empty and simply never match.
func Normalize(raw RawProfile) Profile {
	p := Profile{
		AgeBracket:        raw.Get("Age Bracket"),
		Gender:            raw.Get("Gender"),
		PrimarySport:      PrimarySport,
		TrainingFrequency: raw.Get("Training Frequency"),
		TrainingIntensity: raw.Get("Training Intensity"),
		CoachingSessions:  raw.Get("Coaching Sessions"),
		YearsOfPractice:   raw.Get("Years of Practice"),
		SecondarySport:    SecondarySport,
		Allergens:         DefaultAllergens,
		MedicalHistory:    DefaultMedicalHistory,
		Handedness:        raw.Get("Handedness"),
		Target:            raw.Get("Target"),
	}

	// the four secondary fields are taken or defaulted together
	if strings.TrimSpace(raw.Get("Secondary Sport")) != "" {
		p.TrainingFrequency2 = raw.Get("Training Frequency 2")
		p.TrainingIntensity2 = raw.Get("Training Intensity 2")
		p.CoachingSessions2 = raw.Get("Coaching Sessions 2")
		p.YearsOfPractice2 = raw.Get("Years of Practice 2")
	} else {
		p.TrainingFrequency2 = DefaultTrainingFrequency2
		p.TrainingIntensity2 = DefaultTrainingIntensity2
		p.CoachingSessions2 = DefaultCoachingSessions2
		p.YearsOfPractice2 = DefaultYearsOfPractice2
	}

	if !raw.falsy("Allergens") {
		p.Allergens = raw.Get("Allergens")
	}
	if !raw.falsy("Medical History") {
		p.MedicalHistory = raw.Get("Medical History")
	}

	return p
}

// Key returns the 16 attributes as a comparable tuple.
func (p Profile) Key() Key {
	return Key{
		p.AgeBracket,
		p.Gender,
		p.PrimarySport,
		p.TrainingFrequency,
		p.TrainingIntensity,
		p.CoachingSessions,
		p.YearsOfPractice,
		p.SecondarySport,
		p.TrainingFrequency2,
		p.TrainingIntensity2,
		p.CoachingSessions2,
		p.YearsOfPractice2,
		p.Allergens,
		p.MedicalHistory,
		p.Handedness,
		p.Target,
	}
}

// ProfileFromKey is the inverse of Profile.Key.
func ProfileFromKey(k Key) Profile {
	return Profile{
		AgeBracket:         k[0],
		Gender:             k[1],
		PrimarySport:       k[2],
		TrainingFrequency:  k[3],
		TrainingIntensity:  k[4],
		CoachingSessions:   k[5],
		YearsOfPractice:    k[6],
		SecondarySport:     k[7],
		TrainingFrequency2: k[8],
		TrainingIntensity2: k[9],
		CoachingSessions2:  k[10],
		YearsOfPractice2:   k[11],
		Allergens:          k[12],
		MedicalHistory:     k[13],
		Handedness:         k[14],
		Target:             k[15],
	}
}

// Raw renders the profile back into a raw questionnaire map.
func (p Profile) Raw() RawProfile {
	k := p.Key()
	raw := make(RawProfile, len(k))
	for i, label := range attributeNames {
		raw[label] = k[i]
	}
	return raw
}

// required attributes, by position in Key
var requiredAttributes = []int{0, 1, 3, 4, 5, 6, 14, 15}

// Missing lists the required attributes left empty after normalization.
func (p Profile) Missing() []string {
	k := p.Key()
	var missing []string
	for _, i := range requiredAttributes {
		if k[i] == "" {
			missing = append(missing, attributeNames[i])
		}
	}
	return missing
}
