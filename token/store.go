// Package token holds the six credentials of the Halo Infinite sign-in chain
// in memory and checks their expiry on every read.
package token

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-haloinfinite/internal/utils"
	"github.com/rs/zerolog/log"
)

// Store holds one value per slot. Reads of a tracked-expiry slot fail once the
// expiry has passed; nothing is refreshed or cleared automatically.
type Store struct {
	lock      sync.RWMutex
	user      *UserToken
	xboxUser  *XboxToken
	xstsXbox  *XboxToken
	xstsHalo  *XboxToken
	spartan   *SpartanToken
	clearance *ClearanceToken
	nowFunc   func() time.Time
}

type StoreOption func(*Store)

func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowFunc = now
	}
}

// WithSnapshot pre-seeds the store.
func WithSnapshot(snap Snapshot) StoreOption {
	return func(s *Store) {
		s.restore(snap)
	}
}

func NewStore(options ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range options {
		opt(s)
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}
	return s
}

func (s *Store) SetUserToken(t UserToken) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.user = &t
}

func (s *Store) SetXboxUserToken(t XboxToken) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.xboxUser = cloneXbox(&t)
}

func (s *Store) SetXstsXboxToken(t XboxToken) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.xstsXbox = cloneXbox(&t)
}

func (s *Store) SetXstsHaloToken(t XboxToken) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.xstsHalo = cloneXbox(&t)
}

func (s *Store) SetSpartanToken(t SpartanToken) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.spartan = &t
}

func (s *Store) SetClearanceToken(t ClearanceToken) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.clearance = &t
}

// UserToken is never reported expired; the caller owns its freshness.
func (s *Store) UserToken() (UserToken, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if err := s.check(UserSlot, s.user != nil, ""); err != nil {
		return UserToken{}, err
	}
	return *s.user, nil
}

func (s *Store) XboxUserToken() (XboxToken, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.xboxToken(XboxUserSlot, s.xboxUser)
}

func (s *Store) XstsXboxToken() (XboxToken, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.xboxToken(XstsXboxSlot, s.xstsXbox)
}

func (s *Store) XstsHaloToken() (XboxToken, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.xboxToken(XstsHaloSlot, s.xstsHalo)
}

func (s *Store) SpartanToken() (SpartanToken, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	var expiry string
	if s.spartan != nil {
		expiry = s.spartan.ExpiresUtc.ISO8601Date
	}
	if err := s.check(SpartanSlot, s.spartan != nil, expiry); err != nil {
		return SpartanToken{}, err
	}
	return *s.spartan, nil
}

// ClearanceToken is never reported expired; the caller owns its freshness.
func (s *Store) ClearanceToken() (ClearanceToken, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if err := s.check(ClearanceSlot, s.clearance != nil, ""); err != nil {
		return ClearanceToken{}, err
	}
	return *s.clearance, nil
}

// XboxUserID returns the xuid claim of the XSTS token issued for
// http://xboxlive.com. The Halo XSTS token does not carry it, so a token
// whose first claim has no xid fails with ErrMissingClaims.
func (s *Store) XboxUserID() (string, error) {
	t, err := s.XstsXboxToken()
	if err != nil {
		return "", err
	}
	if len(t.DisplayClaims.Xui) == 0 || t.DisplayClaims.Xui[0].Xid == "" {
		return "", &Error{Slot: XstsXboxSlot, Err: ErrMissingClaims}
	}
	return t.DisplayClaims.Xui[0].Xid, nil
}

// Check returns the error the getter for slot would return, or nil.
func (s *Store) Check(slot Slot) error {
	var err error
	switch slot {
	case UserSlot:
		_, err = s.UserToken()
	case XboxUserSlot:
		_, err = s.XboxUserToken()
	case XstsXboxSlot:
		_, err = s.XstsXboxToken()
	case XstsHaloSlot:
		_, err = s.XstsHaloToken()
	case SpartanSlot:
		_, err = s.SpartanToken()
	case ClearanceSlot:
		_, err = s.ClearanceToken()
	default:
		err = &Error{Slot: slot, Err: ErrUnknownSlot}
	}
	return err
}

// Snapshot copies every slot out, expired or not.
func (s *Store) Snapshot() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return Snapshot{
		User:      utils.Clone(s.user),
		XboxUser:  cloneXbox(s.xboxUser),
		XstsXbox:  cloneXbox(s.xstsXbox),
		XstsHalo:  cloneXbox(s.xstsHalo),
		Spartan:   utils.Clone(s.spartan),
		Clearance: utils.Clone(s.clearance),
	}
}

// Restore replaces every slot with the snapshot's contents. Nil fields unset
// the slot.
func (s *Store) Restore(snap Snapshot) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.restore(snap)
}

func (s *Store) restore(snap Snapshot) {
	s.user = utils.Clone(snap.User)
	s.xboxUser = cloneXbox(snap.XboxUser)
	s.xstsXbox = cloneXbox(snap.XstsXbox)
	s.xstsHalo = cloneXbox(snap.XstsHalo)
	s.spartan = utils.Clone(snap.Spartan)
	s.clearance = utils.Clone(snap.Clearance)
}

func (s *Store) xboxToken(slot Slot, t *XboxToken) (XboxToken, error) {
	var expiry string
	if t != nil {
		expiry = t.NotAfter
	}
	if err := s.check(slot, t != nil, expiry); err != nil {
		return XboxToken{}, err
	}
	return *cloneXbox(t), nil
}

// check is the read rule shared by every getter: unset slots are missing, and
// only slots that track expiry can be expired.
func (s *Store) check(slot Slot, set bool, expiry string) error {
	if !set {
		return &Error{Slot: slot, Err: ErrTokenMissing}
	}
	if slot.TracksExpiry() && s.expired(slot, expiry) {
		return &Error{Slot: slot, Err: ErrTokenExpired}
	}
	return nil
}

// expired is true only when expiry parses and lies strictly before now.
func (s *Store) expired(slot Slot, expiry string) bool {
	at, err := time.Parse(time.RFC3339, expiry)
	if err != nil {
		log.Warn().Err(err).Str("slot", slot.String()).Msg("unparsable token expiry, treating token as fresh")
		return false
	}
	return at.Before(s.nowFunc())
}

// cloneXbox also copies the claim slice so callers cannot mutate stored claims.
func cloneXbox(t *XboxToken) *XboxToken {
	if t == nil {
		return nil
	}
	c := *t
	if t.DisplayClaims.Xui != nil {
		c.DisplayClaims.Xui = make([]XboxUserClaims, len(t.DisplayClaims.Xui))
		copy(c.DisplayClaims.Xui, t.DisplayClaims.Xui)
	}
	return &c
}
