package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"unbenched/internal/config"
	"unbenched/internal/models"
	"unbenched/internal/store"
)

const testSecret = "test-secret"

// fakeStore is an in-memory Stores implementation mirroring the store's
// workflow semantics, so handler tests can run full scenarios without a
// database.
type fakeStore struct {
	mu       sync.Mutex
	now      time.Time
	users    map[uuid.UUID]models.User
	venues   map[uuid.UUID]models.Venue
	games    map[uuid.UUID]models.Game
	players  map[uuid.UUID]map[uuid.UUID]bool
	requests map[uuid.UUID]map[uuid.UUID]bool
	notes    map[uuid.UUID]models.Notification
	logs     []models.AuditLog

	lastSearch *struct{ lat, lng, radius float64 }
}

func newFake() *fakeStore {
	return &fakeStore{
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		users:    map[uuid.UUID]models.User{},
		venues:   map[uuid.UUID]models.Venue{},
		games:    map[uuid.UUID]models.Game{},
		players:  map[uuid.UUID]map[uuid.UUID]bool{},
		requests: map[uuid.UUID]map[uuid.UUID]bool{},
		notes:    map[uuid.UUID]models.Notification{},
	}
}

/* ----------- users ----------- */

func (f *fakeStore) CreateUser(_ context.Context, p store.CreateUserParams) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == p.Email {
			return nil, store.ErrDuplicateEmail
		}
	}
	u := models.User{
		ID: uuid.New(), Name: p.Name, Email: p.Email, PasswordHash: p.PasswordHash,
		Role: p.Role, SkillLevel: p.SkillLevel, CreatedAt: f.now, UpdatedAt: f.now,
	}
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListUsers(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id uuid.UUID, p store.UpdateUserParams) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for otherID, other := range f.users {
		if otherID != id && other.Email == p.Email {
			return nil, store.ErrDuplicateEmail
		}
	}
	u.Name, u.Email, u.Role, u.SkillLevel = p.Name, p.Email, p.Role, p.SkillLevel
	f.users[id] = u
	return &u, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

/* ----------- venues ----------- */

func (f *fakeStore) CreateVenue(_ context.Context, p store.CreateVenueParams) (*models.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := models.Venue{
		ID: uuid.New(), Name: p.Name, Address: p.Address,
		Latitude: p.Latitude, Longitude: p.Longitude,
		Courts: []models.Court{}, CreatedAt: f.now, UpdatedAt: f.now,
	}
	for _, name := range p.CourtNames {
		v.Courts = append(v.Courts, models.Court{ID: uuid.New(), VenueID: v.ID, Name: name})
	}
	f.venues[v.ID] = v
	return &v, nil
}

func (f *fakeStore) GetVenue(_ context.Context, id uuid.UUID) (*models.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &v, nil
}

func (f *fakeStore) ListVenues(_ context.Context) ([]models.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Venue{}
	for _, v := range f.venues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) UpdateVenue(_ context.Context, id uuid.UUID, p store.UpdateVenueParams) (*models.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	v.Name, v.Address, v.Latitude, v.Longitude = p.Name, p.Address, p.Latitude, p.Longitude
	for _, name := range p.AddCourts {
		v.Courts = append(v.Courts, models.Court{ID: uuid.New(), VenueID: id, Name: name})
	}
	if len(p.RemoveCourtIDs) > 0 {
		keep := v.Courts[:0]
		for _, c := range v.Courts {
			removed := false
			for _, rid := range p.RemoveCourtIDs {
				if c.ID == rid {
					removed = true
					break
				}
			}
			if !removed {
				keep = append(keep, c)
			}
		}
		v.Courts = keep
	}
	f.venues[id] = v
	return &v, nil
}

func (f *fakeStore) DeleteVenue(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.venues[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.venues, id)
	return nil
}

/* ----------- games ----------- */

func (f *fakeStore) CreateGame(_ context.Context, p store.CreateGameParams) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[p.VenueID]
	if !ok {
		return nil, store.ErrVenueNotFound
	}
	if p.CourtID != nil {
		found := false
		for _, c := range v.Courts {
			if c.ID == *p.CourtID {
				found = true
				break
			}
		}
		if !found {
			return nil, store.ErrCourtMismatch
		}
	}
	g := models.Game{
		ID: uuid.New(), Title: p.Title, Description: p.Description,
		VenueID: p.VenueID, CourtID: p.CourtID, DateTime: p.DateTime.UTC(),
		OrganizerID: p.OrganizerID, MaxPlayers: p.MaxPlayers, Price: p.Price,
		SkillLevel: p.SkillLevel, Status: models.GameOpen,
		CreatedAt: f.now, UpdatedAt: f.now,
	}
	f.games[g.ID] = g
	f.players[g.ID] = map[uuid.UUID]bool{}
	f.requests[g.ID] = map[uuid.UUID]bool{}
	return &g, nil
}

func (f *fakeStore) GetGameDetail(_ context.Context, id uuid.UUID) (*models.GameDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	d := &models.GameDetail{Game: g}
	d.Venue = f.venues[g.VenueID]
	org := f.users[g.OrganizerID]
	d.Organizer = models.UserRef{ID: org.ID, Name: org.Name}
	d.CurrentPlayers = f.refs(f.players[id])
	d.JoinRequests = f.refs(f.requests[id])
	return d, nil
}

func (f *fakeStore) ListOpenGames(_ context.Context) ([]models.GameSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.GameSummary{}
	for _, g := range f.games {
		if g.Status != models.GameOpen || !g.DateTime.After(f.now) || len(f.players[g.ID]) >= g.MaxPlayers {
			continue
		}
		out = append(out, f.summary(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

func (f *fakeStore) SearchNearby(_ context.Context, lat, lng, radiusM float64) ([]models.GameSummary, error) {
	f.mu.Lock()
	f.lastSearch = &struct{ lat, lng, radius float64 }{lat, lng, radiusM}
	f.mu.Unlock()
	return f.ListOpenGames(context.Background())
}

func (f *fakeStore) ListOrganizerGames(ctx context.Context, organizerID uuid.UUID) ([]models.OrganizerGame, error) {
	open, err := f.ListOpenGames(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.OrganizerGame{}
	for _, sum := range open {
		if sum.OrganizerID != organizerID {
			continue
		}
		out = append(out, models.OrganizerGame{
			GameSummary:  sum,
			JoinRequests: f.refs(f.requests[sum.ID]),
		})
	}
	return out, nil
}

func (f *fakeStore) UpdateGame(_ context.Context, gameID, callerID uuid.UUID, p store.UpdateGameParams) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if g.OrganizerID != callerID {
		return nil, store.ErrForbidden
	}
	if g.Status == models.GameCancelled {
		return nil, store.ErrAlreadyCancelled
	}
	g.Title, g.Description, g.VenueID, g.CourtID = p.Title, p.Description, p.VenueID, p.CourtID
	g.DateTime, g.MaxPlayers, g.Price, g.SkillLevel = p.DateTime.UTC(), p.MaxPlayers, p.Price, p.SkillLevel
	f.games[gameID] = g
	return &g, nil
}

func (f *fakeStore) CancelGame(_ context.Context, gameID, callerID uuid.UUID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if g.OrganizerID != callerID {
		return nil, store.ErrForbidden
	}
	if g.Status == models.GameCancelled {
		return nil, store.ErrAlreadyCancelled
	}
	g.Status = models.GameCancelled
	f.games[gameID] = g
	return &g, nil
}

func (f *fakeStore) RequestJoin(_ context.Context, gameID, userID uuid.UUID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if g.Status != models.GameOpen {
		return nil, store.ErrGameNotOpen
	}
	if g.OrganizerID == userID {
		return nil, store.ErrOwnGame
	}
	if f.players[gameID][userID] || f.requests[gameID][userID] {
		return nil, store.ErrAlreadyInvolved
	}
	f.requests[gameID][userID] = true
	return &g, nil
}

func (f *fakeStore) ApproveRequest(_ context.Context, gameID, userID, callerID uuid.UUID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if g.OrganizerID != callerID {
		return nil, store.ErrForbidden
	}
	if !f.requests[gameID][userID] {
		return nil, store.ErrRequestNotFound
	}
	if len(f.players[gameID]) >= g.MaxPlayers {
		return nil, store.ErrGameFull
	}
	delete(f.requests[gameID], userID)
	f.players[gameID][userID] = true
	return &g, nil
}

func (f *fakeStore) DeclineRequest(_ context.Context, gameID, userID, callerID uuid.UUID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if g.OrganizerID != callerID {
		return nil, store.ErrForbidden
	}
	if !f.requests[gameID][userID] {
		return nil, store.ErrRequestNotFound
	}
	delete(f.requests[gameID], userID)
	return &g, nil
}

/* ----------- notifications ----------- */

func (f *fakeStore) CreateNotification(_ context.Context, p store.CreateNotificationParams) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := models.Notification{
		ID: uuid.New(), RecipientID: p.RecipientID, SenderID: p.SenderID,
		GameID: p.GameID, Type: p.Type, Message: p.Message, CreatedAt: f.now,
	}
	f.notes[n.ID] = n
	return &n, nil
}

func (f *fakeStore) ListUnread(_ context.Context, recipientID uuid.UUID) ([]models.NotificationView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.NotificationView{}
	for _, n := range f.notes {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		v := models.NotificationView{Notification: n}
		if g, ok := f.games[n.GameID]; ok {
			v.GameTitle = g.Title
		}
		if n.SenderID != nil {
			if u, ok := f.users[*n.SenderID]; ok {
				name := u.Name
				v.SenderName = &name
			}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	list, err := f.ListUnread(ctx, recipientID)
	return len(list), err
}

func (f *fakeStore) MarkRead(_ context.Context, id, callerID uuid.UUID) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if n.RecipientID != callerID {
		return nil, store.ErrForbidden
	}
	n.IsRead = true
	f.notes[id] = n
	return &n, nil
}

/* ----------- audit ----------- */

func (f *fakeStore) Audit(_ context.Context, _ *uuid.UUID, action, details string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, models.AuditLog{Action: action, Details: details, CreatedAt: f.now})
}

func (f *fakeStore) ListAuditLogs(_ context.Context) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AuditLog{}, f.logs...), nil
}

func (f *fakeStore) refs(set map[uuid.UUID]bool) []models.UserRef {
	out := []models.UserRef{}
	for id := range set {
		out = append(out, models.UserRef{ID: id, Name: f.users[id].Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeStore) summary(g models.Game) models.GameSummary {
	v := f.venues[g.VenueID]
	org := f.users[g.OrganizerID]
	return models.GameSummary{
		Game:         g,
		VenueName:    v.Name,
		VenueAddress: v.Address,
		Organizer:    models.UserRef{ID: org.ID, Name: org.Name},
		PlayerCount:  len(f.players[g.ID]),
	}
}

/* ----------- test harness ----------- */

func newTestRouter(f *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(f, config.Config{JWTSecret: testSecret}, zerolog.Nop())
}

func (f *fakeStore) addUser(t *testing.T, name string, role models.Role) models.User {
	t.Helper()
	u, err := f.CreateUser(context.Background(), store.CreateUserParams{
		Name: name, Email: name + "@example.com", PasswordHash: "x",
		Role: role, SkillLevel: models.SkillIntermediate,
	})
	if err != nil {
		t.Fatalf("addUser %s: %v", name, err)
	}
	return *u
}

func (f *fakeStore) addVenue(t *testing.T, name string, courts ...string) models.Venue {
	t.Helper()
	v, err := f.CreateVenue(context.Background(), store.CreateVenueParams{
		Name: name, Address: "1 Main St", CourtNames: courts,
	})
	if err != nil {
		t.Fatalf("addVenue %s: %v", name, err)
	}
	return *v
}

func (f *fakeStore) addGame(t *testing.T, organizer models.User, venue models.Venue, maxPlayers int) models.Game {
	t.Helper()
	g, err := f.CreateGame(context.Background(), store.CreateGameParams{
		Title: "Pickup game", VenueID: venue.ID, DateTime: f.now.Add(24 * time.Hour),
		OrganizerID: organizer.ID, MaxPlayers: maxPlayers, SkillLevel: models.SkillIntermediate,
	})
	if err != nil {
		t.Fatalf("addGame: %v", err)
	}
	return *g
}

func sessionCookie(t *testing.T, u models.User) *http.Cookie {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: u.ID.String(),
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return &http.Cookie{Name: cookieName, Value: s}
}

func perform(t *testing.T, r *gin.Engine, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
