package users

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/jrsteele09/go-notes-server/internal/utils"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/pkg/errors"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TFAIssuer is shown by authenticator apps next to the account name
	TFAIssuer = "App"

	unusablePasswordPrefix = "!"
	qrCodeSize             = 256
)

// Permissions checked by the staff-only endpoints
const (
	PermViewUser   = "accounts.view_user"
	PermAddUser    = "accounts.add_user"
	PermChangeUser = "accounts.change_user"
	PermDeleteUser = "accounts.delete_user"
	PermViewNote   = "accounts.view_note"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9-_.@]{1,200}$`)

var tfaOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      0,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	FirstName    string     `json:"first_name,omitempty"`
	MiddleName   string     `json:"middle_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	Avatar       string     `json:"avatar,omitempty"`

	Renewed     time.Time `json:"-"` // tokens issued before this instant are revoked
	Active      bool      `json:"-"`
	Staff       bool      `json:"-"`
	Superuser   bool      `json:"-"`
	Permissions []string  `json:"-"`

	TFASecret   string `json:"-"`
	TFALastCode string `json:"-"`

	LastLogin  *time.Time `json:"last_login,omitempty"`
	DateJoined time.Time  `json:"date_joined"`
}

// New returns an active user with a fresh id and an unusable password.
func New(username string, now time.Time) *User {
	u := &User{
		ID:         utils.UniqueID(22),
		Username:   username,
		Active:     true,
		Renewed:    now,
		DateJoined: now,
	}
	u.SetUnusablePassword()
	return u
}

// ValidateUsername reports whether username is acceptable.
func ValidateUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	if strings.HasPrefix(hash, unusablePasswordPrefix) {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SetPassword hashes password. With expireKeys every token issued so far is revoked.
func (u *User) SetPassword(password string, expireKeys bool, now time.Time) error {
	hash, err := HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "User.SetPassword")
	}
	u.PasswordHash = hash
	if expireKeys {
		u.ExpireKeys(now)
	}
	return nil
}

// SetUnusablePassword makes password sign in impossible, for users created by social sign in.
func (u *User) SetUnusablePassword() {
	u.PasswordHash = unusablePasswordPrefix + utils.RandomString(40)
}

func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

// ExpireKeys revokes every token issued before now.
func (u *User) ExpireKeys(now time.Time) {
	u.Renewed = now
}

// Rnd is the revocation stamp written into tokens.
func (u *User) Rnd() int64 {
	return u.Renewed.Unix()
}

func (u *User) UpdateLastLogin(now time.Time) {
	u.LastLogin = &now
}

// HasPerm reports whether the user holds perm. Active superusers hold every permission.
func (u *User) HasPerm(perm string) bool {
	if u.Active && u.Superuser {
		return true
	}
	return u.Active && slices.Contains(u.Permissions, perm)
}

func (u *User) TFAActive() bool {
	return u.TFASecret != ""
}

// EnableTFA generates a new TOTP secret.
func (u *User) EnableTFA() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: TFAIssuer, AccountName: u.Username})
	if err != nil {
		return "", errors.Wrap(err, "User.EnableTFA")
	}
	u.TFASecret = key.Secret()
	return u.TFASecret, nil
}

func (u *User) DisableTFA() {
	u.TFASecret = ""
}

// TFACode returns the code valid at now.
func (u *User) TFACode(now time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(u.TFASecret, now, tfaOpts)
	if err != nil {
		return "", errors.Wrap(err, "User.TFACode")
	}
	return code, nil
}

// CheckTFACode validates code at now. The last accepted code is remembered and
// cannot be used twice.
func (u *User) CheckTFACode(code string, now time.Time) bool {
	if !u.TFAActive() || code == "" || code == u.TFALastCode {
		return false
	}
	valid, err := totp.ValidateCustom(code, u.TFASecret, now, tfaOpts)
	if err != nil || !valid {
		return false
	}
	u.TFALastCode = code
	return true
}

// ProvisioningURI is the otpauth url authenticator apps scan.
func (u *User) ProvisioningURI() string {
	v := url.Values{}
	v.Set("secret", u.TFASecret)
	v.Set("issuer", TFAIssuer)
	return (&url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + TFAIssuer + ":" + u.Username,
		RawQuery: v.Encode(),
	}).String()
}

// TFAQRCode renders the provisioning uri as a PNG data url.
func (u *User) TFAQRCode() (string, error) {
	key, err := otp.NewKeyFromURL(u.ProvisioningURI())
	if err != nil {
		return "", errors.Wrap(err, "User.TFAQRCode key")
	}
	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return "", errors.Wrap(err, "User.TFAQRCode image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(err, "User.TFAQRCode encode")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(strings.Join(strings.Fields(fmt.Sprintf("%s %s %s", u.FirstName, u.MiddleName, u.LastName)), " "))
}

func (u *User) CursorValue(field string) string {
	switch field {
	case "username":
		return u.Username
	case "date_joined":
		return pagination.FormatTime(u.DateJoined)
	default:
		return u.ID
	}
}

// Clone returns a copy safe to mutate without touching a stored user.
func (u *User) Clone() *User {
	c := *u
	c.Permissions = slices.Clone(u.Permissions)
	return &c
}
