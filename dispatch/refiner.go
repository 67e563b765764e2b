package dispatch

import (
	"context"
	"strings"
	"unicode"
)

// Cache is the explicit substitute for the "implicit ambient cache
// parameter" design note 9 flags: refiners read through this interface
// instead of closing over a package-global.
type Cache interface {
	GuildName(guildID string) (string, bool)
}

// RefineContext carries the state a Refiner needs to evaluate a single
// dispatched command invocation. It replaces the typeclass-style "effect"
// abstraction design note 9 flags with an explicit struct threaded through
// every call.
type RefineContext struct {
	Context context.Context
	Cache   Cache

	GuildID   string
	ChannelID string
	AuthorID  string
	Content   string
}

// Refiner is an explicit interface in place of a typeclass-style effect
// abstraction: prefix, aliases, and filters are each a predicate a command
// can opt into, called synchronously in sequence with short-circuit on the
// first rejection. Each returns its result directly; none returns a
// deferred value.
type Refiner interface {
	// Prefix reports the command prefix this refiner expects, and whether
	// rc.Content begins with it.
	Prefix(rc *RefineContext) (prefix string, ok bool, err error)

	// Aliases reports whether the token immediately following the prefix
	// matches one of this refiner's command names.
	Aliases(rc *RefineContext, token string) (ok bool, err error)

	// Filters runs any remaining preconditions (permissions, channel type,
	// cooldowns) after the command name has already matched.
	Filters(rc *RefineContext) (ok bool, err error)
}

// Refine runs rc through refiners in order, short-circuiting on the first
// stage that rejects or errors. It returns the refiner that accepted the
// invocation, or nil if none did.
func Refine(rc *RefineContext, refiners []Refiner) (Refiner, error) {
	for _, r := range refiners {
		prefix, ok, err := r.Prefix(rc)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		token := rc.Content[len(prefix):]
		if i := strings.IndexFunc(token, unicode.IsSpace); i >= 0 {
			token = token[:i]
		}

		ok, err = r.Aliases(rc, token)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		ok, err = r.Filters(rc)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		return r, nil
	}

	return nil, nil
}
