package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizflow/review-engine/internal/srs"
)

// ReviewEvent is one persisted review outcome. The scheduling effect lives
// on the card; the event log feeds the stats rating tally.
type ReviewEvent struct {
	ID         string           `json:"id"`
	QuestionID string           `json:"question_id"`
	Rating     srs.Rating       `json:"rating"`
	XPEarned   int              `json:"xp_earned"`
	Timestamp  time.Time        `json:"timestamp"`
	Mastery    srs.MasteryLevel `json:"mastery_level"`
}

// engineStore is the on-disk layout. Cards are kept as raw JSON so one
// unparseable record poisons only its own key, not the whole file.
type engineStore struct {
	Cards        map[string]json.RawMessage `json:"cards"`
	ActivityDays []string                   `json:"activity_days"`
	Reviews      []ReviewEvent              `json:"reviews"`
	TotalXP      int                        `json:"total_xp"`
	LastUpdated  time.Time                  `json:"last_updated"`
}

// ErrCardNotFound is returned when no card exists for a question ID.
var ErrCardNotFound = errors.New("review card not found")

// ErrCardCorrupt is returned when a persisted card record cannot be decoded
// or fails validation. It is scoped to the single offending card.
var ErrCardCorrupt = errors.New("review card record corrupt")

// ErrNegativeXP is returned when a negative XP total is written.
var ErrNegativeXP = errors.New("xp total must be non-negative")

// Storage is the persistence abstraction the engine depends on. The engine
// assumes nothing about the backing technology; FileStorage is the JSON-file
// implementation used by the server binary.
type Storage interface {
	// Card operations
	GetCard(questionID string) (srs.ReviewCard, error)
	PutCard(card srs.ReviewCard) error
	ListCards() ([]srs.ReviewCard, error)
	CorruptCardIDs() []string

	// Activity ledger operations
	AddActivityDay(day string) error
	ListActivityDays() ([]string, error)

	// Review history operations
	AddReviewEvent(event ReviewEvent) (ReviewEvent, error)
	ListReviewEvents() ([]ReviewEvent, error)

	// XP operations
	GetXP() (int, error)
	SetXP(total int) error

	// File operations
	Load() error
	Save() error
}

// FileStorage implements Storage using a single JSON file for persistence.
type FileStorage struct {
	filePath string
	mu       sync.RWMutex

	cards   map[string]srs.ReviewCard
	corrupt map[string]error
	days    map[string]bool
	reviews []ReviewEvent
	totalXP int
}

// NewFileStorage creates a new FileStorage instance
func NewFileStorage(filePath string) *FileStorage {
	log.Printf("[Storage] Creating new FileStorage for: %s", filePath)
	return &FileStorage{
		filePath: filePath,
		cards:    make(map[string]srs.ReviewCard),
		corrupt:  make(map[string]error),
		days:     make(map[string]bool),
		reviews:  []ReviewEvent{},
	}
}

// GetCard retrieves a review card by question ID.
func (fs *FileStorage) GetCard(questionID string) (srs.ReviewCard, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if reason, bad := fs.corrupt[questionID]; bad {
		return srs.ReviewCard{}, fmt.Errorf("card %s (%v): %w", questionID, reason, ErrCardCorrupt)
	}
	card, exists := fs.cards[questionID]
	if !exists {
		return srs.ReviewCard{}, ErrCardNotFound
	}
	return card, nil
}

// PutCard creates or replaces the card for its question ID. Writing a valid
// card clears any corruption flag on that key.
func (fs *FileStorage) PutCard(card srs.ReviewCard) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid card %s: %w", card.QuestionID, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.cards[card.QuestionID] = card
	delete(fs.corrupt, card.QuestionID)
	return nil
}

// ListCards returns every decodable card, in unspecified order.
func (fs *FileStorage) ListCards() ([]srs.ReviewCard, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	result := make([]srs.ReviewCard, 0, len(fs.cards))
	for _, card := range fs.cards {
		result = append(result, card)
	}
	return result, nil
}

// CorruptCardIDs returns the question IDs whose persisted records failed to
// decode at Load time and have not been overwritten since.
func (fs *FileStorage) CorruptCardIDs() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	ids := make([]string, 0, len(fs.corrupt))
	for id := range fs.corrupt {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddActivityDay records one calendar-date key in the activity ledger.
// Same-day repeats are idempotent.
func (fs *FileStorage) AddActivityDay(day string) error {
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return fmt.Errorf("invalid activity day %q: %w", day, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.days[day] = true
	return nil
}

// ListActivityDays returns the ledger's date keys in ascending order.
func (fs *FileStorage) ListActivityDays() ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	days := make([]string, 0, len(fs.days))
	for day := range fs.days {
		days = append(days, day)
	}
	sort.Strings(days)
	return days, nil
}

// AddReviewEvent appends one review outcome to the history log, assigning an
// ID when the caller did not.
func (fs *FileStorage) AddReviewEvent(event ReviewEvent) (ReviewEvent, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.reviews = append(fs.reviews, event)
	return event, nil
}

// ListReviewEvents returns a copy of the review history in append order.
func (fs *FileStorage) ListReviewEvents() ([]ReviewEvent, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	result := make([]ReviewEvent, len(fs.reviews))
	copy(result, fs.reviews)
	return result, nil
}

// GetXP returns the learner's cumulative XP total.
func (fs *FileStorage) GetXP() (int, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.totalXP, nil
}

// SetXP replaces the learner's cumulative XP total.
func (fs *FileStorage) SetXP(total int) error {
	if total < 0 {
		return ErrNegativeXP
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.totalXP = total
	return nil
}

// save is the internal helper for saving data without acquiring the lock
// again. Assumes the write lock is already held.
func (fs *FileStorage) save() error {
	store := engineStore{
		Cards:        make(map[string]json.RawMessage, len(fs.cards)),
		ActivityDays: make([]string, 0, len(fs.days)),
		Reviews:      fs.reviews,
		TotalXP:      fs.totalXP,
		LastUpdated:  time.Now(),
	}

	for id, card := range fs.cards {
		raw, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("failed to marshal card %s: %w", id, err)
		}
		store.Cards[id] = raw
	}
	for day := range fs.days {
		store.ActivityDays = append(store.ActivityDays, day)
	}
	sort.Strings(store.ActivityDays)

	dataBytes, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage data: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(fs.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to a temporary file, then rename into place (atomic on most
	// systems) so a crash mid-write never leaves a truncated store.
	tempFile := fs.filePath + ".tmp"
	if err := os.WriteFile(tempFile, dataBytes, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, fs.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// Load reads the store from disk. A missing file initializes an empty store
// and writes it out; a card record that fails to decode or validate is
// flagged corrupt rather than failing the whole load.
func (fs *FileStorage) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	log.Printf("[Storage:Load] Loading from: %s", fs.filePath)
	if _, err := os.Stat(fs.filePath); os.IsNotExist(err) {
		log.Printf("[Storage:Load] File not found, initializing empty store.")
		fs.reset()
		if saveErr := fs.save(); saveErr != nil {
			return fmt.Errorf("failed to save initial empty store: %w", saveErr)
		}
		return nil
	}

	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		return fmt.Errorf("failed to read storage file: %w", err)
	}
	if len(data) == 0 {
		log.Printf("[Storage:Load] File is empty, initializing empty store.")
		fs.reset()
		return nil
	}

	var store engineStore
	if err := json.Unmarshal(data, &store); err != nil {
		return fmt.Errorf("failed to unmarshal storage data: %w", err)
	}

	fs.reset()
	for id, raw := range store.Cards {
		var card srs.ReviewCard
		if err := json.Unmarshal(raw, &card); err != nil {
			log.Printf("[Storage:Load] Card %s failed to decode: %v", id, err)
			fs.corrupt[id] = err
			continue
		}
		if err := card.Validate(); err != nil {
			log.Printf("[Storage:Load] Card %s failed validation: %v", id, err)
			fs.corrupt[id] = err
			continue
		}
		if card.QuestionID != id {
			log.Printf("[Storage:Load] Card %s keyed under wrong ID %q", card.QuestionID, id)
			fs.corrupt[id] = fmt.Errorf("record keyed as %q but claims question %q", id, card.QuestionID)
			continue
		}
		fs.cards[id] = card
	}
	for _, day := range store.ActivityDays {
		fs.days[day] = true
	}
	if store.Reviews != nil {
		fs.reviews = store.Reviews
	}
	fs.totalXP = store.TotalXP
	if fs.totalXP < 0 {
		log.Printf("[Storage:Load] Negative XP total %d in file, clamping to 0", fs.totalXP)
		fs.totalXP = 0
	}

	log.Printf("[Storage:Load] Loaded %d cards (%d corrupt), %d ledger days, %d reviews",
		len(fs.cards), len(fs.corrupt), len(fs.days), len(fs.reviews))
	return nil
}

// reset reinitializes the in-memory store. Assumes the write lock is held.
func (fs *FileStorage) reset() {
	fs.cards = make(map[string]srs.ReviewCard)
	fs.corrupt = make(map[string]error)
	fs.days = make(map[string]bool)
	fs.reviews = []ReviewEvent{}
	fs.totalXP = 0
}

// Save writes the store to disk atomically.
func (fs *FileStorage) Save() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.save()
}
