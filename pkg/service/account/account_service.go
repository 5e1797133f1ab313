package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/pbkdf2"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/repository"
	accountrepos "github.com/JeroenBertels/glh-timer/pkg/repository/account"
)

// ErrInvalidCredentials is returned for unknown users, inactive
// accounts and wrong passwords alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	hashAlgo   = "pbkdf2_sha256"
	hashIters  = 200000
	saltBytes  = 16
	hashLength = 32
)

// AccountService manages operator identities. The engine only consults
// the resulting identity and race scope, enforcement is up to the
// calling layer.
type AccountService struct {
	pool *pgxpool.Pool
}

func NewAccountService(pool *pgxpool.Pool) *AccountService {
	return &AccountService{pool: pool}
}

// EnsureAdmin creates the admin account when missing. Idempotent, an
// existing account is left untouched. Returns true when created.
func (s *AccountService) EnsureAdmin(
	ctx context.Context,
	username, password string,
) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("admin username and password required")
	}
	_, err := accountrepos.LoadByUsername(ctx, s.pool, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNoData) {
		return false, err
	}
	_, err = accountrepos.Create(ctx, s.pool, &model.Account{
		Username:     username,
		PasswordHash: HashPassword(password),
		Role:         model.RoleAdmin,
		Active:       true,
	})
	if err != nil {
		return false, err
	}
	log.Info("created admin account", log.String("username", username))
	return true, nil
}

// CreateOrganizer creates an organizer account, optionally scoped to a
// single race.
func (s *AccountService) CreateOrganizer(
	ctx context.Context,
	username, password, raceID string,
) (*model.Account, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password required")
	}
	return accountrepos.Create(ctx, s.pool, &model.Account{
		Username:     username,
		PasswordHash: HashPassword(password),
		Role:         model.RoleOrganizer,
		RaceID:       raceID,
		Active:       true,
	})
}

// Verify checks the credentials and returns the account. Unknown user,
// inactive account and wrong password are indistinguishable to the
// caller.
func (s *AccountService) Verify(
	ctx context.Context,
	username, password string,
) (*model.Account, error) {
	acc, err := accountrepos.LoadByUsername(ctx, s.pool, username)
	if err != nil {
		if errors.Is(err, repository.ErrNoData) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !acc.Active || !VerifyPassword(acc.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

// HashPassword derives a salted pbkdf2-sha256 hash in the form
// "pbkdf2_sha256$<iterations>$<salt>$<derived-key>".
func HashPassword(password string) string {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		panic(err)
	}
	return encodeHash(password, hex.EncodeToString(salt), hashIters)
}

// VerifyPassword recomputes the hash with the embedded salt and
// iteration count and compares in constant time.
func VerifyPassword(encoded, password string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != hashAlgo {
		return false
	}
	iters, err := strconv.Atoi(parts[1])
	if err != nil || iters <= 0 {
		return false
	}
	recomputed := encodeHash(password, parts[2], iters)
	return subtle.ConstantTimeCompare([]byte(encoded), []byte(recomputed)) == 1
}

func encodeHash(password, salt string, iters int) string {
	dk := pbkdf2.Key([]byte(password), []byte(salt), iters, hashLength, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		hashAlgo, iters, salt, base64.StdEncoding.EncodeToString(dk))
}
