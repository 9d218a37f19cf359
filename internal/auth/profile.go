package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	people "google.golang.org/api/people/v1"
	"google.golang.org/api/option"
)

// ErrProfileFetch is returned when the People API call fails.
var ErrProfileFetch = errors.New("profile fetch failed")

const (
	defaultDisplayName = "Unknown User"
	personFields       = "names,photos,emailAddresses"
	userIDPrefix       = "people/"
)

// UserProfile is the normalized identity derived from the People API response.
// The JSON field names are part of the browser contract.
type UserProfile struct {
	DisplayName     string `json:"displayName"`
	ProfilePhotoURL string `json:"profilePhotoUrl"`
	UserID          string `json:"userID"`
}

// ProfileFetcher retrieves the authenticated user's profile using a
// token-bearing client built by the Authenticator.
type ProfileFetcher struct {
	auth     *Authenticator
	endpoint string
}

// ProfileOption configures a ProfileFetcher during construction.
type ProfileOption func(*ProfileFetcher)

// WithPeopleEndpoint overrides the People API base URL, used in tests.
func WithPeopleEndpoint(endpoint string) ProfileOption {
	return func(f *ProfileFetcher) {
		f.endpoint = endpoint
	}
}

// NewProfileFetcher constructs a ProfileFetcher.
func NewProfileFetcher(auth *Authenticator, opts ...ProfileOption) *ProfileFetcher {
	f := &ProfileFetcher{auth: auth}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch requests name, photo and resource identifier for the "me" resource.
func (f *ProfileFetcher) Fetch(ctx context.Context, token *oauth2.Token) (UserProfile, error) {
	opts := []option.ClientOption{option.WithHTTPClient(f.auth.HTTPClient(ctx, token))}
	if f.endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.endpoint))
	}

	svc, err := people.NewService(ctx, opts...)
	if err != nil {
		return UserProfile{}, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	person, err := svc.People.Get("people/me").PersonFields(personFields).Context(ctx).Do()
	if err != nil {
		return UserProfile{}, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	return profileFromPerson(person), nil
}

// profileFromPerson maps a People API person onto a UserProfile,
// substituting defaults for absent fields. The stable user ID is the
// resource name with its "people/" namespace prefix stripped; identifiers
// in any other shape pass through untouched.
func profileFromPerson(person *people.Person) UserProfile {
	profile := UserProfile{DisplayName: defaultDisplayName}

	if len(person.Names) > 0 && person.Names[0].DisplayName != "" {
		profile.DisplayName = person.Names[0].DisplayName
	}
	if len(person.Photos) > 0 {
		profile.ProfilePhotoURL = person.Photos[0].Url
	}
	profile.UserID = strings.TrimPrefix(person.ResourceName, userIDPrefix)

	return profile
}
