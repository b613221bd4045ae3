package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/mortgage-engine/factory"
	"github.com/warp/mortgage-engine/mortgage"
)

func period(start, end int) mortgage.InterestPeriod {
	return mortgage.InterestPeriod{StartMonth: start, EndMonth: end, AnnualInterestRate: 3}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     mortgage.Config
		field   string
		wantErr bool
	}{
		{
			name: "valid unsorted periods",
			cfg:  mortgage.Config{Principal: 1000, Months: 24, Periods: []mortgage.InterestPeriod{period(13, 24), period(1, 12)}},
		},
		{
			name: "last period may run past the term",
			cfg:  mortgage.Config{Principal: 1000, Months: 24, Periods: []mortgage.InterestPeriod{period(1, 36)}},
		},
		{
			name:    "zero principal",
			cfg:     mortgage.Config{Principal: 0, Months: 12, Periods: []mortgage.InterestPeriod{period(1, 12)}},
			field:   "principal",
			wantErr: true,
		},
		{
			name:    "zero months",
			cfg:     mortgage.Config{Principal: 1000, Months: 0, Periods: []mortgage.InterestPeriod{period(1, 12)}},
			field:   "months",
			wantErr: true,
		},
		{
			name:    "term past the maximum",
			cfg:     mortgage.Config{Principal: 1000, Months: mortgage.MaxMonths + 1, Periods: []mortgage.InterestPeriod{period(1, mortgage.MaxMonths + 1)}},
			field:   "months",
			wantErr: true,
		},
		{
			name:    "no periods",
			cfg:     mortgage.Config{Principal: 1000, Months: 12},
			field:   "periods",
			wantErr: true,
		},
		{
			name:    "does not start at month 1",
			cfg:     mortgage.Config{Principal: 1000, Months: 12, Periods: []mortgage.InterestPeriod{period(2, 12)}},
			field:   "periods",
			wantErr: true,
		},
		{
			name:    "gap",
			cfg:     mortgage.Config{Principal: 1000, Months: 24, Periods: []mortgage.InterestPeriod{period(1, 10), period(13, 24)}},
			field:   "periods",
			wantErr: true,
		},
		{
			name:    "overlap",
			cfg:     mortgage.Config{Principal: 1000, Months: 24, Periods: []mortgage.InterestPeriod{period(1, 14), period(13, 24)}},
			field:   "periods",
			wantErr: true,
		},
		{
			name:    "short of the term",
			cfg:     mortgage.Config{Principal: 1000, Months: 24, Periods: []mortgage.InterestPeriod{period(1, 20)}},
			field:   "periods",
			wantErr: true,
		},
		{
			name:    "inverted period",
			cfg:     mortgage.Config{Principal: 1000, Months: 12, Periods: []mortgage.InterestPeriod{period(1, 0), period(1, 12)}},
			field:   "periods",
			wantErr: true,
		},
		{
			name: "bad partial amortization",
			cfg: mortgage.Config{
				Principal: 1000, Months: 12, Periods: []mortgage.InterestPeriod{period(1, 12)},
				PartialAmortizations: []mortgage.PartialAmortization{{PeriodMonths: 0, Amount: 10, Type: mortgage.AmortizeTime}},
			},
			field:   "partial_amortizations",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := factory.ValidateConfig(tt.cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *factory.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, factory.ErrInvalidConfig)
		})
	}
}

func TestAppendPeriod(t *testing.T) {
	cfg := mortgage.Config{Principal: 1000, Months: 360, Periods: []mortgage.InterestPeriod{period(1, 120)}}

	cfg, err := factory.AppendPeriod(cfg)

	require.NoError(t, err)
	require.Len(t, cfg.Periods, 2)
	assert.Equal(t, 121, cfg.Periods[1].StartMonth)
	assert.Equal(t, 360, cfg.Periods[1].EndMonth)
	assert.NoError(t, factory.ValidateConfig(cfg))

	_, err = factory.AppendPeriod(cfg)
	assert.ErrorIs(t, err, factory.ErrInvalidConfig, "term already covered")
}

func TestRemovePeriod(t *testing.T) {
	cfg := mortgage.Config{Principal: 1000, Months: 24, Periods: []mortgage.InterestPeriod{period(1, 12), period(13, 24)}}

	cfg, err := factory.RemovePeriod(cfg, 1)
	require.NoError(t, err)
	assert.Len(t, cfg.Periods, 1)

	_, err = factory.RemovePeriod(cfg, 0)
	assert.ErrorIs(t, err, factory.ErrInvalidConfig, "last period cannot be removed")
}
