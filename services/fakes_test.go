package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/repositories"
	"github.com/Marinovinc/TournamentMaster/storage"
)

// Репозитории в памяти для сервисных тестов. Параметр exec игнорируется:
// транзакционность проверяется отдельно через sqlmock.

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) add(id int, firstName, lastName string) *models.User {
	u := &models.User{ID: id, FirstName: firstName, LastName: lastName, Role: models.RolePlayer}
	r.users[id] = u
	if id > r.nextID {
		r.nextID = id
	}
	return u
}

type fakeRegistrationRepo struct {
	regs   map[int]*models.Registration
	nextID int

	// countErr, если задана, возвращается из CountConfirmed.
	countErr error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: map[int]*models.Registration{}}
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	for _, existing := range r.regs {
		if existing.TournamentID == reg.TournamentID && existing.UserID == reg.UserID {
			return repositories.ErrRegistrationConflict
		}
	}
	r.nextID++
	reg.ID = r.nextID
	reg.CreatedAt = time.Now()
	r.regs[reg.ID] = reg
	return nil
}

func (r *fakeRegistrationRepo) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	return reg, nil
}

func (r *fakeRegistrationRepo) GetByUserAndTournament(ctx context.Context, tournamentID, userID int) (*models.Registration, error) {
	for _, reg := range r.regs {
		if reg.TournamentID == tournamentID && reg.UserID == userID {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) ListConfirmed(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.Registration, error) {
	var out []*models.Registration
	for _, reg := range r.regs {
		if reg.TournamentID == tournamentID && reg.Status == models.RegistrationConfirmed {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRegistrationRepo) CountConfirmed(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	regs, _ := r.ListConfirmed(ctx, nil, tournamentID)
	return len(regs), nil
}

func (r *fakeRegistrationRepo) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	reg, ok := r.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	return nil
}

func (r *fakeRegistrationRepo) addConfirmed(tournamentID, userID int, teamName *string) *models.Registration {
	reg := &models.Registration{TournamentID: tournamentID, UserID: userID, TeamName: teamName, Status: models.RegistrationConfirmed}
	r.nextID++
	reg.ID = r.nextID
	r.regs[reg.ID] = reg
	return reg
}

type fakeCatchRepo struct {
	catches map[int]*models.Catch
	nextID  int
}

func newFakeCatchRepo() *fakeCatchRepo {
	return &fakeCatchRepo{catches: map[int]*models.Catch{}}
}

func (r *fakeCatchRepo) Create(ctx context.Context, c *models.Catch, validation interface{}) error {
	r.nextID++
	c.ID = r.nextID
	c.SubmittedAt = time.Now()
	r.catches[c.ID] = c
	return nil
}

func (r *fakeCatchRepo) GetByID(ctx context.Context, id int) (*models.Catch, error) {
	c, ok := r.catches[id]
	if !ok {
		return nil, repositories.ErrCatchNotFound
	}
	return c, nil
}

func (r *fakeCatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Catch, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeCatchRepo) List(ctx context.Context, filter repositories.ListCatchesFilter) ([]*models.Catch, int, error) {
	var matched []*models.Catch
	for _, c := range r.catches {
		if filter.TournamentID != nil && c.TournamentID != *filter.TournamentID {
			continue
		}
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *fakeCatchRepo) ListApprovedByUser(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID int) ([]*models.Catch, error) {
	var out []*models.Catch
	for _, c := range r.catches {
		if c.TournamentID == tournamentID && c.UserID == userID && c.Status == models.CatchApproved {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCatchRepo) UpdateReview(ctx context.Context, exec repositories.SQLExecutor, c *models.Catch) error {
	if _, ok := r.catches[c.ID]; !ok {
		return repositories.ErrCatchNotFound
	}
	r.catches[c.ID] = c
	return nil
}

func (r *fakeCatchRepo) CountByStatus(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, status models.CatchStatus) (int, error) {
	count := 0
	for _, c := range r.catches {
		if c.TournamentID == tournamentID && c.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeCatchRepo) CountByUserAndDay(ctx context.Context, tournamentID, userID int, day time.Time) (int, error) {
	y, m, d := day.UTC().Date()
	count := 0
	for _, c := range r.catches {
		cy, cm, cd := c.CaughtAt.UTC().Date()
		if c.TournamentID == tournamentID && c.UserID == userID && cy == y && cm == m && cd == d {
			count++
		}
	}
	return count, nil
}

type fakeLeaderboardRepo struct {
	entries map[int]*models.LeaderboardEntry
	nextID  int
}

func newFakeLeaderboardRepo() *fakeLeaderboardRepo {
	return &fakeLeaderboardRepo{entries: map[int]*models.LeaderboardEntry{}}
}

func (r *fakeLeaderboardRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, entry *models.LeaderboardEntry) error {
	for _, existing := range r.entries {
		if existing.TournamentID == entry.TournamentID && existing.UserID == entry.UserID {
			entry.ID = existing.ID
			entry.Rank = existing.Rank
			r.entries[entry.ID] = entry
			return nil
		}
	}
	r.nextID++
	entry.ID = r.nextID
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeLeaderboardRepo) GetByTournamentAndUser(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID int) (*models.LeaderboardEntry, error) {
	for _, e := range r.entries {
		if e.TournamentID == tournamentID && e.UserID == userID {
			return e, nil
		}
	}
	return nil, repositories.ErrLeaderboardEntryNotFound
}

func (r *fakeLeaderboardRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID, limit, offset int) ([]*models.LeaderboardEntry, error) {
	all, _ := r.ListForRanking(ctx, nil, tournamentID)
	sort.Slice(all, func(i, j int) bool { return all[i].Rank < all[j].Rank })
	if offset > 0 {
		if offset >= len(all) {
			return nil, nil
		}
		all = all[offset:]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeLeaderboardRepo) ListForRanking(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]*models.LeaderboardEntry, error) {
	var out []*models.LeaderboardEntry
	for _, e := range r.entries {
		if e.TournamentID == tournamentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLeaderboardRepo) UpdateRanks(ctx context.Context, exec repositories.SQLExecutor, entries []*models.LeaderboardEntry) error {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *fakeLeaderboardRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	all, _ := r.ListForRanking(ctx, nil, tournamentID)
	return len(all), nil
}

func (r *fakeLeaderboardRepo) Aggregate(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*repositories.LeaderboardAggregates, error) {
	agg := &repositories.LeaderboardAggregates{}
	all, _ := r.ListForRanking(ctx, nil, tournamentID)
	for _, e := range all {
		agg.TotalWeight += e.TotalWeight
		agg.TotalPoints += e.TotalPoints
		if e.BiggestCatch != nil && (agg.BiggestCatch == nil || *e.BiggestCatch > *agg.BiggestCatch) {
			w := *e.BiggestCatch
			agg.BiggestCatch = &w
		}
	}
	return agg, nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[int]*models.Tournament{}}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	for _, existing := range r.tournaments {
		if existing.Name == t.Name && existing.OrganizerID == t.OrganizerID {
			return repositories.ErrTournamentNameConflict
		}
	}
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range r.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.OrganizerID != nil && t.OrganizerID != *filter.OrganizerID {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error {
	t, ok := r.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) GetTournamentsForAutoTransition(ctx context.Context, exec repositories.SQLExecutor, currentTime time.Time) ([]*models.Tournament, error) {
	var due []*models.Tournament
	for _, t := range r.tournaments {
		var deadline time.Time
		switch t.Status {
		case models.StatusPublished:
			deadline = t.RegistrationOpens
		case models.StatusRegistrationOpen:
			deadline = t.RegistrationCloses
		case models.StatusRegistrationClosed:
			deadline = t.StartDate
		case models.StatusOngoing:
			deadline = t.EndDate
		default:
			continue
		}
		if !deadline.After(currentTime) {
			copied := *t
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (r *fakeTournamentRepo) add(t *models.Tournament) *models.Tournament {
	r.nextID++
	if t.ID == 0 {
		t.ID = r.nextID
	}
	r.tournaments[t.ID] = t
	return t
}

type fakeZoneRepo struct {
	zones  map[int]*models.FishingZone
	nextID int
}

func newFakeZoneRepo() *fakeZoneRepo {
	return &fakeZoneRepo{zones: map[int]*models.FishingZone{}}
}

func (r *fakeZoneRepo) Create(ctx context.Context, zone *models.FishingZone) error {
	r.nextID++
	zone.ID = r.nextID
	r.zones[zone.ID] = zone
	return nil
}

func (r *fakeZoneRepo) GetByID(ctx context.Context, id int) (*models.FishingZone, error) {
	z, ok := r.zones[id]
	if !ok {
		return nil, repositories.ErrFishingZoneNotFound
	}
	return z, nil
}

func (r *fakeZoneRepo) ListByTournament(ctx context.Context, tournamentID int, onlyActive bool) ([]models.FishingZone, error) {
	var out []models.FishingZone
	for _, z := range r.zones {
		if z.TournamentID != tournamentID {
			continue
		}
		if onlyActive && !z.IsActive {
			continue
		}
		out = append(out, *z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeZoneRepo) Update(ctx context.Context, zone *models.FishingZone) error {
	if _, ok := r.zones[zone.ID]; !ok {
		return repositories.ErrFishingZoneNotFound
	}
	r.zones[zone.ID] = zone
	return nil
}

func (r *fakeZoneRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.zones[id]; !ok {
		return repositories.ErrFishingZoneNotFound
	}
	delete(r.zones, id)
	return nil
}

func (r *fakeZoneRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, z := range r.zones {
		if z.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

type fakeSpeciesRepo struct {
	species map[int]*models.Species
	scoring map[[2]int]*models.SpeciesScoring
}

func newFakeSpeciesRepo() *fakeSpeciesRepo {
	return &fakeSpeciesRepo{
		species: map[int]*models.Species{},
		scoring: map[[2]int]*models.SpeciesScoring{},
	}
}

func (r *fakeSpeciesRepo) GetByID(ctx context.Context, id int) (*models.Species, error) {
	s, ok := r.species[id]
	if !ok {
		return nil, repositories.ErrSpeciesNotFound
	}
	return s, nil
}

func (r *fakeSpeciesRepo) List(ctx context.Context) ([]models.Species, error) {
	var out []models.Species
	for _, s := range r.species {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSpeciesRepo) GetScoring(ctx context.Context, tournamentID, speciesID int) (*models.SpeciesScoring, error) {
	return r.scoring[[2]int{tournamentID, speciesID}], nil
}

func (r *fakeSpeciesRepo) UpsertScoring(ctx context.Context, scoring *models.SpeciesScoring) error {
	r.scoring[[2]int{scoring.TournamentID, scoring.SpeciesID}] = scoring
	return nil
}

func (r *fakeSpeciesRepo) ListScoringByTournament(ctx context.Context, tournamentID int) ([]models.SpeciesScoring, error) {
	var out []models.SpeciesScoring
	for key, s := range r.scoring {
		if key[0] == tournamentID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpeciesID < out[j].SpeciesID })
	return out, nil
}

type broadcastRecord struct {
	Room  string
	Event Event
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastRecord
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ev, ok := message.(Event); ok {
		b.events = append(b.events, broadcastRecord{Room: roomID, Event: ev})
	}
}

func (b *fakeBroadcaster) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, rec := range b.events {
		out = append(out, rec.Event.Type)
	}
	return out
}

type fakeUploader struct {
	uploaded []string
	deleted  []string
}

func (u *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, err
	}
	u.uploaded = append(u.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}
