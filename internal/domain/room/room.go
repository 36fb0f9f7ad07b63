// Package room derives a chat room's category and scoping fields from its id.
//
// Rooms are not stored. The id alone carries everything needed to route and
// authorize a room:
//
//	journey_<journeyId>          group planning for one journey
//	location_<lat>_<lon>         geographically scoped chat
//	qa_<journeyId>_<askerId>     Q&A between an asker and a journey's creator
//	anything else                direct chat between two users
package room

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type Category string

const (
	CategoryGroupPlanning Category = "group_planning"
	CategoryLocationChat  Category = "location_chat"
	CategoryQAChat        Category = "qa_chat"
	CategoryDirect        Category = "direct"
)

const (
	prefixJourney  = "journey_"
	prefixLocation = "location_"
	prefixQA       = "qa_"
	prefixDirect   = "direct_"
)

var ErrMalformedRoomID = errors.New("malformed room id")

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGroupPlanning, CategoryLocationChat, CategoryQAChat, CategoryDirect:
		return true
	}
	return false
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Ref is the parsed form of a room id. Exactly one of the variant fields is
// set, matching Category.
type Ref struct {
	ID       string
	Category Category

	GroupPlanning *GroupPlanning
	Location      *LocationChat
	QA            *QAChat
	Direct        *Direct
}

type GroupPlanning struct {
	JourneyID string
}

type LocationChat struct {
	Coordinates Coordinates
}

type QAChat struct {
	JourneyID string
	AskerID   string
}

// Direct holds the two participants encoded in a direct room id. Participants
// is empty when the id does not encode exactly two users.
type Direct struct {
	Participants []string
}

// JourneyID returns the journey a room is scoped to, if any.
func (r Ref) JourneyID() string {
	switch r.Category {
	case CategoryGroupPlanning:
		return r.GroupPlanning.JourneyID
	case CategoryQAChat:
		return r.QA.JourneyID
	}
	return ""
}

// CategoryOf derives the category from the id prefix. It never fails.
func CategoryOf(id string) Category {
	switch {
	case strings.HasPrefix(id, prefixJourney):
		return CategoryGroupPlanning
	case strings.HasPrefix(id, prefixLocation):
		return CategoryLocationChat
	case strings.HasPrefix(id, prefixQA):
		return CategoryQAChat
	default:
		return CategoryDirect
	}
}

// Parse turns a room id into a Ref. Prefixed ids whose fields are missing or
// malformed return ErrMalformedRoomID.
func Parse(id string) (Ref, error) {
	if strings.TrimSpace(id) == "" {
		return Ref{}, fmt.Errorf("%w: empty id", ErrMalformedRoomID)
	}

	ref := Ref{ID: id, Category: CategoryOf(id)}
	switch ref.Category {
	case CategoryGroupPlanning:
		journeyID := strings.TrimPrefix(id, prefixJourney)
		if journeyID == "" {
			return Ref{}, fmt.Errorf("%w: missing journey id", ErrMalformedRoomID)
		}
		ref.GroupPlanning = &GroupPlanning{JourneyID: journeyID}

	case CategoryLocationChat:
		coords, err := parseCoordinates(strings.TrimPrefix(id, prefixLocation))
		if err != nil {
			return Ref{}, err
		}
		ref.Location = &LocationChat{Coordinates: coords}

	case CategoryQAChat:
		journeyID, askerID, ok := strings.Cut(strings.TrimPrefix(id, prefixQA), "_")
		if !ok || journeyID == "" || askerID == "" {
			return Ref{}, fmt.Errorf("%w: qa room needs journey and asker ids", ErrMalformedRoomID)
		}
		ref.QA = &QAChat{JourneyID: journeyID, AskerID: askerID}

	case CategoryDirect:
		ref.Direct = &Direct{Participants: directParticipants(id)}
	}
	return ref, nil
}

// DirectID returns the canonical direct room id for two users. The order of
// the arguments does not matter.
func DirectID(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return prefixDirect + ids[0] + "_" + ids[1]
}

// HasParticipant reports whether userID is one of the direct room's users.
func (d *Direct) HasParticipant(userID string) bool {
	if d == nil || userID == "" {
		return false
	}
	for _, p := range d.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Other returns the participant that is not userID.
func (d *Direct) Other(userID string) string {
	if d == nil || len(d.Participants) != 2 {
		return ""
	}
	if d.Participants[0] == userID {
		return d.Participants[1]
	}
	if d.Participants[1] == userID {
		return d.Participants[0]
	}
	return ""
}

func directParticipants(id string) []string {
	parts := strings.Split(strings.TrimPrefix(id, prefixDirect), "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}
	return parts
}

func parseCoordinates(raw string) (Coordinates, error) {
	latRaw, lonRaw, ok := strings.Cut(raw, "_")
	if !ok {
		return Coordinates{}, fmt.Errorf("%w: location room needs lat and lon", ErrMalformedRoomID)
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("%w: invalid latitude %q", ErrMalformedRoomID, latRaw)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Coordinates{}, fmt.Errorf("%w: invalid longitude %q", ErrMalformedRoomID, lonRaw)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}
