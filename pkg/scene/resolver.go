package scene

import (
	"fmt"

	"github.com/df07/go-ltc-raytracer/pkg/config"
	"github.com/df07/go-ltc-raytracer/pkg/loaders"
	"github.com/df07/go-ltc-raytracer/pkg/ltc"
)

// TablesFromConfig returns the three row tables named by cfg, either the
// analytic approximation or the loaded table files
func TablesFromConfig(cfg config.LTCConfig) ([3]*ltc.GridTable, error) {
	if cfg.Approximate {
		r1, r2, r3 := ltc.ApproximateGGXTables(cfg.Resolution)
		return [3]*ltc.GridTable{r1, r2, r3}, nil
	}
	if len(cfg.Tables) != 3 {
		return [3]*ltc.GridTable{}, fmt.Errorf("need 3 ltc tables, got %d: %w", len(cfg.Tables), ltc.ErrMissingTable)
	}
	return loaders.LoadLTCTables([3]string{cfg.Tables[0], cfg.Tables[1], cfg.Tables[2]}, cfg.TableScale, cfg.TableBias)
}

// ResolverFromConfig builds the LTC matrix resolver from either the analytic
// approximation or three table files
func ResolverFromConfig(cfg config.LTCConfig) (*ltc.Resolver, error) {
	var opts []ltc.ResolverOption
	if cfg.ColumnMajor {
		opts = append(opts, ltc.WithColumnMajor())
	}

	tables, err := TablesFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return ltc.NewResolver(tables[0], tables[1], tables[2], opts...)
}
