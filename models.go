package registry

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenClass distinguishes the two session token kinds tracked by the ledger.
type TokenClass = string

const (
	// TokenClassAccess is the short-lived API credential.
	TokenClassAccess TokenClass = "access"
	// TokenClassRefresh is the long-lived credential used to mint new
	// access tokens.
	TokenClassRefresh TokenClass = "refresh"
)

// User is the club-owning account model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Admin         bool       `bun:"admin" json:"admin,omitempty"`
	Confirmed     bool       `bun:"confirmed" json:"confirmed,omitempty"`
	RegisteredAt  *time.Time `bun:"registered_at,nullzero,default:current_timestamp" json:"registered_at,omitempty"`
	ConfirmedAt   *time.Time `bun:"confirmed_at,nullzero" json:"confirmed_at,omitempty"`
}

// AccessJTI tracks one issued access token by its token id. Rows are only
// ever mutated by flipping Expired to true.
type AccessJTI struct {
	bun.BaseModel `bun:"table:access_jtis,alias:ajti"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id,omitempty"`
	Owner         *User      `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
	TokenID       string     `bun:"token_id,notnull,unique" json:"token_id,omitempty"`
	Expired       bool       `bun:"expired" json:"expired,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// RefreshJTI tracks one issued refresh token by its token id.
type RefreshJTI struct {
	bun.BaseModel `bun:"table:refresh_jtis,alias:rjti"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id,omitempty"`
	Owner         *User      `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
	TokenID       string     `bun:"token_id,notnull,unique" json:"token_id,omitempty"`
	Expired       bool       `bun:"expired" json:"expired,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// PreVerifiedEmail is the registration allowlist.
type PreVerifiedEmail struct {
	bun.BaseModel `bun:"table:preverified_emails,alias:pve"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email,omitempty"`
}

// FutureUser captures organizations interested in joining before their
// email is added to the allowlist.
type FutureUser struct {
	bun.BaseModel `bun:"table:future_users,alias:fusr"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OrgName       string    `bun:"org_name,notnull" json:"org_name,omitempty"`
	OrgEmail      string    `bun:"org_email,notnull,unique" json:"org_email,omitempty"`
	PocName       string    `bun:"poc_name,notnull" json:"poc_name,omitempty"`
	PocEmail      string    `bun:"poc_email,notnull" json:"poc_email,omitempty"`
}

// Event is a club event embedded in the club profile.
type Event struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Link        string    `json:"link,omitempty"`
}

// Resource is a titled link embedded in the club profile.
type Resource struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// SocialLinks maps the supported social platforms to profile URLs.
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
}

// Tag is a catalog label clubs attach to their profile.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:tag"`
	ID            int64  `bun:"id,pk" json:"id"`
	Name          string `bun:"name,notnull" json:"name"`
}

// Club is the public profile owned by a registered user.
type Club struct {
	bun.BaseModel    `bun:"table:clubs,alias:club"`
	ID               uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name             string       `bun:"name,notnull" json:"name,omitempty"`
	OwnerID          uuid.UUID    `bun:"owner_id,notnull,type:uuid" json:"owner_id,omitempty"`
	Owner            *User        `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
	TagIDs           []int64      `bun:"tag_ids,type:jsonb" json:"tags,omitempty"`
	AppRequired      bool         `bun:"app_required,notnull" json:"app_required"`
	AcceptingMembers bool         `bun:"accepting_members,notnull" json:"accepting_members"`
	Description      string       `bun:"description" json:"description,omitempty"`
	Website          string       `bun:"website" json:"website,omitempty"`
	Resources        []Resource   `bun:"resources,type:jsonb" json:"resources,omitempty"`
	Events           []Event      `bun:"events,type:jsonb" json:"events,omitempty"`
	SocialLinks      *SocialLinks `bun:"social_links,type:jsonb" json:"social_links,omitempty"`
}
