package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"journey-chat/internal/domain/journey"
	"journey-chat/internal/domain/message"
	"journey-chat/internal/domain/room"
	"journey-chat/internal/domain/user"
	"journey-chat/internal/repository"

	"github.com/google/uuid"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	UserCount    int
	WithMessages bool
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		UserCount:    5,
		WithMessages: true,
	}
}

// SeedData is the demo dataset: profiles, journeys and a few messages in
// rooms of every category.
type SeedData struct {
	Users    []user.PublicProfile
	Journeys []journey.Journey
	Messages []*message.Message
}

var demoUsers = []user.PublicProfile{
	{ID: "alice", Username: "alice", DisplayName: "Alice Johnson"},
	{ID: "bob", Username: "bob", DisplayName: "Bob Smith"},
	{ID: "charlie", Username: "charlie", DisplayName: "Charlie Brown"},
	{ID: "diana", Username: "diana", DisplayName: "Diana Prince"},
	{ID: "edward", Username: "edward", DisplayName: "Edward Chen"},
	{ID: "fiona", Username: "fiona", DisplayName: "Fiona Green"},
	{ID: "george", Username: "george", DisplayName: "George Miller"},
	{ID: "hannah", Username: "hannah", DisplayName: "Hannah White"},
}

// DemoData builds the dataset described by cfg. It needs at least two users
// for journeys and messages; with fewer it returns users only.
func DemoData(cfg *SeedConfig, now time.Time) SeedData {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}
	count := min(max(cfg.UserCount, 0), len(demoUsers))
	data := SeedData{Users: append([]user.PublicProfile(nil), demoUsers[:count]...)}
	if count < 2 {
		return data
	}

	creator, guest := data.Users[0].ID, data.Users[1].ID
	trip := journey.Journey{ID: "patagonia-2026", CreatorID: creator, Collaborators: []string{guest}}
	data.Journeys = []journey.Journey{trip}
	if !cfg.WithMessages {
		return data
	}

	asker := guest
	if count > 2 {
		asker = data.Users[2].ID
	}
	rooms := []struct {
		roomID  string
		sender  string
		content string
	}{
		{"journey_" + trip.ID, creator, "Welcome aboard! Flights are booked for March."},
		{"journey_" + trip.ID, guest, "Great, I'll sort out the hostel in El Chaltén."},
		{"qa_" + trip.ID + "_" + asker, asker, "Is the Fitz Roy trek doable in one day?"},
		{"location_-49.33_-72.89", guest, "Anyone around El Chaltén this week?"},
		{room.DirectID(creator, guest), creator, "Don't forget the rain jacket."},
	}
	for i, r := range rooms {
		ref, err := room.Parse(r.roomID)
		if err != nil {
			continue
		}
		at := now.Add(time.Duration(i-len(rooms)) * time.Minute)
		msg := &message.Message{
			ID:           uuid.New(),
			SenderID:     r.sender,
			Content:      r.content,
			Type:         message.TypeText,
			RoomID:       ref.ID,
			RoomCategory: ref.Category,
			JourneyID:    ref.JourneyID(),
			Attachments:  []message.Attachment{},
			Status:       message.StatusSent,
			CreatedAt:    at,
			UpdatedAt:    at,
		}
		if ref.Location != nil {
			msg.Type = message.TypeLocation
			msg.Location = &message.Location{Name: "El Chaltén", Coordinates: ref.Location.Coordinates}
		}
		data.Messages = append(data.Messages, msg)
	}
	return data
}

// Seed writes the demo dataset in one transaction. Users and journeys that
// already exist are left untouched.
func Seed(ctx context.Context, db repository.DBTX, cfg *SeedConfig) (SeedData, error) {
	log.Println("Starting database seeding...")

	data := DemoData(cfg, time.Now().UTC())
	err := repository.WithTx(ctx, db, func(tx repository.DBTX) error {
		for _, u := range data.Users {
			if _, err := tx.Exec(ctx, `
				INSERT INTO users (id, username, display_name, avatar_url)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO NOTHING`,
				u.ID, u.Username, u.DisplayName, u.AvatarURL); err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
			}
		}

		for _, j := range data.Journeys {
			if _, err := tx.Exec(ctx, `
				INSERT INTO journeys (id, creator_id) VALUES ($1, $2)
				ON CONFLICT (id) DO NOTHING`, j.ID, j.CreatorID); err != nil {
				return fmt.Errorf("failed to seed journey %s: %w", j.ID, err)
			}
			for _, c := range j.Collaborators {
				if _, err := tx.Exec(ctx, `
					INSERT INTO journey_collaborators (journey_id, user_id) VALUES ($1, $2)
					ON CONFLICT DO NOTHING`, j.ID, c); err != nil {
					return fmt.Errorf("failed to seed collaborator %s: %w", c, err)
				}
			}
		}

		messages := repository.NewMessageRepository(tx)
		for _, m := range data.Messages {
			if err := messages.Create(ctx, m); err != nil {
				return fmt.Errorf("failed to seed message in %s: %w", m.RoomID, err)
			}
		}
		return nil
	})
	if err != nil {
		return SeedData{}, err
	}

	log.Printf("Database seeding completed: %d users, %d journeys, %d messages",
		len(data.Users), len(data.Journeys), len(data.Messages))
	return data, nil
}
