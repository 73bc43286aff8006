package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prep-study/pronto/config"
	"github.com/prep-study/pronto/internal/mailer"
	"github.com/prep-study/pronto/internal/model"
	"github.com/prep-study/pronto/internal/repository"
	"gorm.io/gorm"
)

// In-memory fakes shared by the service tests. Each fake implements the
// store interfaces its service consumes and mimics the repository contract,
// including gorm.ErrRecordNotFound for misses and for lost consume races.

// errTest is the injected store failure used across the service tests.
var errTest = errors.New("store failure")

func testTime() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			CorporateHosts: []string{"corp.prep.study"},
		},
		Verification: config.VerificationConfig{
			CodeLength:    8,
			Window:        time.Hour,
			DeletionGrace: 168 * time.Hour,
		},
		Badge: testBadges(),
	}
}

func testBadges() config.BadgeConfig {
	return config.BadgeConfig{
		BronzeGems:   1000,
		SilverGems:   2000,
		GoldGems:     3000,
		DiamondGems:  4000,
		ChampionGems: 5000,
	}
}

func mustHash(password string) string {
	hash, err := hashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}

// fakeUsers backs every user-facing store slice the services carve out of
// the user repository.
type fakeUsers struct {
	users  map[uint]*model.User
	nextID uint

	permissionsByUser map[uint][]model.Permission

	createErr             error
	replacePermissionsErr error
	updateLastLoginErr    error
	updateRefreshTokenErr error
	updateTokenVersionErr error
	updatePasswordErr     error
	activateErr           error
	updateEmailErr        error
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{
		users:             map[uint]*model.User{},
		permissionsByUser: map[uint][]model.Permission{},
	}
	for _, u := range users {
		if u.ID == 0 {
			f.nextID++
			u.ID = f.nextID
		} else if u.ID > f.nextID {
			f.nextID = u.ID
		}
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if !u.IsDeleted && u.Email != "" && u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if !u.IsDeleted && u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByAuthCode(_ context.Context, authCode string) (*model.User, error) {
	for _, u := range f.users {
		if !u.IsDeleted && u.AuthCode == authCode {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetAll(_ context.Context, limit, offset int, filter repository.UserListFilter) ([]model.User, int64, error) {
	matched := make([]model.User, 0, len(f.users))
	for id := uint(1); id <= f.nextID; id++ {
		u, ok := f.users[id]
		if !ok {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if filter.IsDeleted != nil && u.IsDeleted != *filter.IsDeleted {
			continue
		}
		if filter.RoleSlug != "" && (u.Role == nil || u.Role.Slug != filter.RoleSlug) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, *u)
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if !u.IsDeleted && u.Email != "" && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) MobileNumberExists(_ context.Context, mobile string) (bool, error) {
	for _, u := range f.users {
		if u.MobileNumber != "" && u.MobileNumber == mobile {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) Activate(_ context.Context, id uint) error {
	if f.activateErr != nil {
		return f.activateErr
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.IsEmailVerified = true
	user.IsActive = true
	return nil
}

func (f *fakeUsers) ReplacePermissions(_ context.Context, user *model.User, permissions []model.Permission) error {
	if f.replacePermissionsErr != nil {
		return f.replacePermissionsErr
	}
	f.permissionsByUser[user.ID] = permissions
	return nil
}

func (f *fakeUsers) Update(_ context.Context, id uint, fields map[string]interface{}) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["first_name"]; ok {
		user.FirstName = v.(string)
	}
	if v, ok := fields["last_name"]; ok {
		user.LastName = v.(string)
	}
	if v, ok := fields["mobile_number"]; ok {
		user.MobileNumber = v.(string)
	}
	if v, ok := fields["city_id"]; ok {
		id := v.(uint)
		user.CityID = &id
	}
	return nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uint) error {
	if f.updateLastLoginErr != nil {
		return f.updateLastLoginErr
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.LastLogin = time.Now()
	return nil
}

func (f *fakeUsers) UpdateRefreshToken(_ context.Context, id uint, refreshTokenHash string, expiresAt *time.Time) error {
	if f.updateRefreshTokenErr != nil {
		return f.updateRefreshTokenErr
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.RefreshTokenHash = refreshTokenHash
	user.RefreshTokenExpires = expiresAt
	return nil
}

func (f *fakeUsers) FindByRefreshToken(_ context.Context, refreshToken string) (*model.User, error) {
	for _, u := range f.users {
		if u.RefreshTokenHash != "" && checkPassword(u.RefreshTokenHash, refreshToken) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) UpdateTokenVersion(_ context.Context, id uint, newVersion int) error {
	if f.updateTokenVersionErr != nil {
		return f.updateTokenVersionErr
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.TokenVersion = newVersion
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	if f.updatePasswordErr != nil {
		return f.updatePasswordErr
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (f *fakeUsers) UpdateEmail(_ context.Context, id uint, email string) error {
	if f.updateEmailErr != nil {
		return f.updateEmailErr
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Email = email
	return nil
}

type fakeRoles struct {
	roles map[string]*model.Role
}

func newFakeRoles(roles ...*model.Role) *fakeRoles {
	f := &fakeRoles{roles: map[string]*model.Role{}}
	for _, r := range roles {
		f.roles[r.Slug] = r
	}
	return f
}

func (f *fakeRoles) GetBySlug(_ context.Context, slug string) (*model.Role, error) {
	role, ok := f.roles[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

func (f *fakeRoles) GetByID(_ context.Context, id uint) (*model.Role, error) {
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeVerifications backs all three one-time-code stores. Consuming an
// already-consumed request returns gorm.ErrRecordNotFound the way the
// conditional UPDATE in the repository does.
type fakeVerifications struct {
	accountVerifications []*model.AccountVerificationRequest
	passwordResets       []*model.PasswordResetRequest
	emailChanges         []*model.EmailChangeRequest
	nextID               uint

	createVerificationErr error
	createResetErr        error
	createEmailChangeErr  error
}

func (f *fakeVerifications) CreateAccountVerification(_ context.Context, req *model.AccountVerificationRequest) error {
	if f.createVerificationErr != nil {
		return f.createVerificationErr
	}
	f.nextID++
	req.ID = f.nextID
	f.accountVerifications = append(f.accountVerifications, req)
	return nil
}

func (f *fakeVerifications) GetAccountVerificationByCode(_ context.Context, code string) (*model.AccountVerificationRequest, error) {
	for _, req := range f.accountVerifications {
		if req.VerificationCode == code {
			return req, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVerifications) GetLatestAccountVerificationByUser(_ context.Context, userID uint) (*model.AccountVerificationRequest, error) {
	var latest *model.AccountVerificationRequest
	for _, req := range f.accountVerifications {
		if req.UserID == userID {
			latest = req
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f *fakeVerifications) ConsumeAccountVerification(_ context.Context, id uint, at time.Time) error {
	for _, req := range f.accountVerifications {
		if req.ID == id {
			if req.IsAccountVerified {
				return gorm.ErrRecordNotFound
			}
			req.IsAccountVerified = true
			req.AccountVerifiedAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeVerifications) CreatePasswordReset(_ context.Context, req *model.PasswordResetRequest) error {
	if f.createResetErr != nil {
		return f.createResetErr
	}
	f.nextID++
	req.ID = f.nextID
	f.passwordResets = append(f.passwordResets, req)
	return nil
}

func (f *fakeVerifications) GetPasswordResetByCode(_ context.Context, code string) (*model.PasswordResetRequest, error) {
	for _, req := range f.passwordResets {
		if req.VerificationCode == code {
			return req, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVerifications) ConsumePasswordReset(_ context.Context, id uint, at time.Time) error {
	for _, req := range f.passwordResets {
		if req.ID == id {
			if req.IsPasswordReset {
				return gorm.ErrRecordNotFound
			}
			req.IsPasswordReset = true
			req.PasswordResetAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeVerifications) CreateEmailChange(_ context.Context, req *model.EmailChangeRequest) error {
	if f.createEmailChangeErr != nil {
		return f.createEmailChangeErr
	}
	f.nextID++
	req.ID = f.nextID
	f.emailChanges = append(f.emailChanges, req)
	return nil
}

func (f *fakeVerifications) GetValidEmailChange(_ context.Context, userID uint, newEmail string, now time.Time) (*model.EmailChangeRequest, error) {
	for _, req := range f.emailChanges {
		if req.UserID == userID && req.NewEmail == newEmail && req.IsValid(now) {
			return req, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVerifications) GetEmailChangeByUserAndCode(_ context.Context, userID uint, code string) (*model.EmailChangeRequest, error) {
	for _, req := range f.emailChanges {
		if req.UserID == userID && req.VerificationCode == code {
			return req, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVerifications) ConsumeEmailChange(_ context.Context, id uint, at time.Time) error {
	for _, req := range f.emailChanges {
		if req.ID == id {
			if req.IsEmailChanged {
				return gorm.ErrRecordNotFound
			}
			req.IsEmailChanged = true
			req.EmailChangedAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeDeletions struct {
	requests map[uint]*model.DeleteUserAccountRequest
	nextID   uint

	createErr error
	cancelErr error
}

func newFakeDeletions(requests ...*model.DeleteUserAccountRequest) *fakeDeletions {
	f := &fakeDeletions{requests: map[uint]*model.DeleteUserAccountRequest{}}
	for _, req := range requests {
		if req.ID == 0 {
			f.nextID++
			req.ID = f.nextID
		} else if req.ID > f.nextID {
			f.nextID = req.ID
		}
		f.requests[req.ID] = req
	}
	return f
}

func (f *fakeDeletions) Create(_ context.Context, req *model.DeleteUserAccountRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	req.ID = f.nextID
	f.requests[req.ID] = req
	return nil
}

func (f *fakeDeletions) GetByIdentifier(_ context.Context, identifier uuid.UUID) (*model.DeleteUserAccountRequest, error) {
	for _, req := range f.requests {
		if req.Identifier == identifier {
			return req, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDeletions) GetByID(_ context.Context, id uint) (*model.DeleteUserAccountRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return req, nil
}

func (f *fakeDeletions) GetPendingByUser(_ context.Context, userID uint) ([]model.DeleteUserAccountRequest, error) {
	var pending []model.DeleteUserAccountRequest
	for id := uint(1); id <= f.nextID; id++ {
		req, ok := f.requests[id]
		if !ok {
			continue
		}
		if req.UserID == userID && req.IsPending() {
			pending = append(pending, *req)
		}
	}
	return pending, nil
}

func (f *fakeDeletions) Execute(_ context.Context, requestID, userID uint, at time.Time) error {
	req, ok := f.requests[requestID]
	if !ok || req.UserID != userID || !req.IsPending() {
		return gorm.ErrRecordNotFound
	}
	req.IsAccountDeleted = true
	req.ConfirmAt = &at
	return nil
}

func (f *fakeDeletions) CancelPendingByUser(_ context.Context, userID uint) (int64, error) {
	if f.cancelErr != nil {
		return 0, f.cancelErr
	}
	var cancelled int64
	for _, req := range f.requests {
		if req.UserID == userID && req.IsPending() {
			req.IsLoggedIn = true
			cancelled++
		}
	}
	return cancelled, nil
}

// fakeInitiator records the accounts the set-password flow asked a fresh
// verification for.
type fakeInitiator struct {
	users []*model.User
	err   error
}

func (f *fakeInitiator) InitiateVerification(_ context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	f.users = append(f.users, user)
	return nil
}

type scheduledJob struct {
	kind      string
	payload   interface{}
	notBefore time.Time
}

type fakeScheduler struct {
	jobs []scheduledJob
	err  error
}

func (f *fakeScheduler) Schedule(_ context.Context, kind string, payload interface{}, notBefore time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, scheduledJob{kind: kind, payload: payload, notBefore: notBefore})
	return nil
}

type fakeMailer struct {
	jobs []mailer.MailJob
	err  error
}

func (f *fakeMailer) Dispatch(_ context.Context, job mailer.MailJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

// fakeRecorder stands in for the session recorder when testing login.
type fakeRecorder struct {
	logins   []uint
	closed   []uint
	loginErr error
	closeErr error
}

func (f *fakeRecorder) RecordLogin(_ context.Context, userID uint, _, _, _ string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.logins = append(f.logins, userID)
	return nil
}

func (f *fakeRecorder) CloseSessions(_ context.Context, userID uint) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closed = append(f.closed, userID)
	return nil
}

type fakeSessions struct {
	environments []*model.UserEnvironmentDetails
	sessions     []*model.UserSession
	nextID       uint
}

func (f *fakeSessions) FindEnvironment(_ context.Context, env *model.UserEnvironmentDetails) (*model.UserEnvironmentDetails, error) {
	for _, e := range f.environments {
		if e.UserID == env.UserID &&
			e.OS == env.OS &&
			e.OSVersion == env.OSVersion &&
			e.IPAddress == env.IPAddress &&
			e.Browser == env.Browser &&
			e.BrowserVersion == env.BrowserVersion &&
			e.DeviceType == env.DeviceType &&
			e.Device == env.Device {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessions) CreateEnvironment(_ context.Context, env *model.UserEnvironmentDetails) error {
	f.nextID++
	env.ID = f.nextID
	f.environments = append(f.environments, env)
	return nil
}

func (f *fakeSessions) UpsertSession(_ context.Context, userID, environmentID uint, token string, loginAt time.Time) (*model.UserSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.EnvironmentID == environmentID {
			s.Token = token
			s.LastLogin = loginAt
			s.LastLogout = nil
			return s, nil
		}
	}
	f.nextID++
	session := &model.UserSession{
		UserID:        userID,
		EnvironmentID: environmentID,
		Token:         token,
		LastLogin:     loginAt,
	}
	session.ID = f.nextID
	f.sessions = append(f.sessions, session)
	return session, nil
}

func (f *fakeSessions) CloseSessions(_ context.Context, userID uint, at time.Time) error {
	for _, s := range f.sessions {
		if s.UserID == userID && s.LastLogout == nil {
			logout := at
			s.LastLogout = &logout
		}
	}
	return nil
}

func (f *fakeSessions) ListByUser(_ context.Context, userID uint) ([]model.UserSession, error) {
	var res []model.UserSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			res = append(res, *s)
		}
	}
	return res, nil
}

type fakeHistory struct {
	rows []*model.EmailHistory

	updateErr error
	listErr   error
}

func (f *fakeHistory) UpdateStatus(_ context.Context, messageID, email, status string, providerResponse []byte) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, row := range f.rows {
		if row.MessageID == messageID && row.Email == email {
			row.Status = status
			if providerResponse != nil {
				row.ProviderResponse = providerResponse
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeHistory) ListByEmail(_ context.Context, email string, limit, offset int) ([]model.EmailHistory, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var matched []model.EmailHistory
	for _, row := range f.rows {
		if row.Email == email {
			matched = append(matched, *row)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

type fakeLocations struct {
	countries []*model.Country
	states    []*model.State
	cities    []*model.City

	listErr error
}

func (f *fakeLocations) ListCountries(_ context.Context) ([]model.Country, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	res := make([]model.Country, 0, len(f.countries))
	for _, c := range f.countries {
		res = append(res, *c)
	}
	return res, nil
}

func (f *fakeLocations) ListStatesByCountry(_ context.Context, countryID uint) ([]model.State, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var res []model.State
	for _, s := range f.states {
		if s.CountryID == countryID {
			res = append(res, *s)
		}
	}
	return res, nil
}

func (f *fakeLocations) ListCitiesByState(_ context.Context, stateID uint) ([]model.City, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var res []model.City
	for _, c := range f.cities {
		if c.StateID == stateID {
			res = append(res, *c)
		}
	}
	return res, nil
}

func (f *fakeLocations) GetCountry(_ context.Context, id uint) (*model.Country, error) {
	for _, c := range f.countries {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLocations) GetState(_ context.Context, id uint) (*model.State, error) {
	for _, s := range f.states {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLocations) GetCity(_ context.Context, id uint) (*model.City, error) {
	for _, c := range f.cities {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeCache is a map-backed locationCache. Values round-trip through JSON so
// the cached shape matches what redis would hand back.
type fakeCache struct {
	data map[string][]byte
	gets int
	sets int

	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	f.gets++
	if f.getErr != nil {
		return false, f.getErr
	}
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	f.sets++
	return nil
}

type fakeCatalog struct {
	categories    []*model.Category
	manufacturers []*model.Manufacturer
	products      []*model.Product
}

func (f *fakeCatalog) ListCategories(_ context.Context) ([]model.Category, error) {
	res := make([]model.Category, 0, len(f.categories))
	for _, c := range f.categories {
		res = append(res, *c)
	}
	return res, nil
}

func (f *fakeCatalog) ListManufacturers(_ context.Context) ([]model.Manufacturer, error) {
	res := make([]model.Manufacturer, 0, len(f.manufacturers))
	for _, m := range f.manufacturers {
		res = append(res, *m)
	}
	return res, nil
}

func (f *fakeCatalog) ListProducts(_ context.Context, limit, offset int, categorySlug string) ([]model.Product, int64, error) {
	var matched []model.Product
	for _, p := range f.products {
		if !p.IsActive {
			continue
		}
		if categorySlug != "" && (p.Category == nil || p.Category.Slug != categorySlug) {
			continue
		}
		matched = append(matched, *p)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeCatalog) GetProductBySlug(_ context.Context, slug string) (*model.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug && p.IsActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
