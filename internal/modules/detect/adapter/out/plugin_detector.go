package out

import (
	"context"

	"cgmlens/internal/modules/detect/domain"
	detectout "cgmlens/internal/modules/detect/port/out"
	pluginin "cgmlens/internal/modules/plugin/port/in"
)

// PluginDetector hands the series to every installed detector plugin.
type PluginDetector struct {
	plugins pluginin.Usecase
}

func NewPluginDetector(plugins pluginin.Usecase) detectout.ExternalDetector {
	return &PluginDetector{plugins: plugins}
}

func (a *PluginDetector) Masks(ctx context.Context, series domain.Series, intervalMin float64) ([]detectout.NamedMask, error) {
	results, err := a.plugins.DetectAll(ctx, []float64(series), intervalMin)
	if err != nil {
		return nil, err
	}
	out := make([]detectout.NamedMask, 0, len(results))
	for _, result := range results {
		out = append(out, detectout.NamedMask{Name: result.Detector, Mask: domain.Mask(result.Mask)})
	}
	return out, nil
}
