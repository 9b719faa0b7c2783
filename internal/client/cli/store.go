package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/babeledit/internal/client/config"
	"github.com/dmitrijs2005/babeledit/internal/client/credentials"
	"github.com/dmitrijs2005/babeledit/internal/filex"
)

// OpenStore builds the session store selected by the configuration. The
// returned closer is nil for stores that hold no resources.
func OpenStore(ctx context.Context, c *config.Config) (credentials.Store, io.Closer, error) {
	switch c.SessionStore {
	case config.StoreMemory:
		return credentials.NewMemoryStore(), nil, nil

	case config.StoreCookie:
		s, err := credentials.NewCookieStore(c.APIURL,
			credentials.WithSecure(c.IsProduction()),
			credentials.WithMaxAge(c.CookieMaxAge),
		)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	case config.StoreSQLite:
		if _, err := filex.EnsureParentDir(c.SessionDBPath); err != nil {
			return nil, nil, err
		}
		s, err := credentials.OpenSQLiteStore(ctx, c.SessionDBPath, []byte(c.SessionPassphrase))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session database: %w", err)
		}
		return s, s, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store %q", c.SessionStore)
	}
}
