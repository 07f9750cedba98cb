package extract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/use-agent/pricewatch/extract"
	"github.com/use-agent/pricewatch/models"
)

func Test_Classify(t *testing.T) {
	tests := []struct {
		name   string
		buy    *float64
		want   models.Category
		wantOK bool
	}{
		{"Amerikan Doları", ptr(34.2), models.CategoryCurrency, true},
		{"EUR/TRY", ptr(37.1), models.CategoryCurrency, true},
		{"İNGİLİZ STERLİNİ", ptr(44.0), models.CategoryCurrency, true},
		{"İsviçre Frangı", nil, models.CategoryOther, false},
		{"CHF", ptr(39.9), models.CategoryCurrency, true},
		{"Gümüş", ptr(31.5), models.CategorySilver, true},
		{"GÜMÜŞ USD", ptr(31.5), models.CategoryCurrency, true},
		{"Silver Ounce", ptr(31.5), models.CategorySilver, true},
		{"Gram Altın", ptr(2450.0), models.CategoryGold, true},
		{"GRAM ALTIN", ptr(2450.0), models.CategoryGold, true},
		{"Çeyrek Altın", ptr(4500.0), models.CategoryGold, true},
		{"Reşat", ptr(17000.0), models.CategoryGold, true},
		{"Has Altın", ptr(2400.0), models.CategoryGold, true},
		{"22 Ayar Bilezik", ptr(2200.0), models.CategoryGold, true},
		{"Ons", ptr(2650.0), models.CategoryGold, true},
		{"XYZ", ptr(150.0), models.CategoryOther, true},
		{"XYZ", ptr(100.0), models.CategoryOther, false},
		{"XYZ", ptr(50.0), models.CategoryOther, false},
		{"XYZ", nil, models.CategoryOther, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extract.Classify(tt.name, tt.buy)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func Test_Classify_CurrencyBeforeGold(t *testing.T) {
	// "ons" and "dolar" both match; currency is checked first.
	got, ok := extract.Classify("Ons Dolar", ptr(2650.0))
	require.True(t, ok)
	require.Equal(t, models.CategoryCurrency, got)
}

func Test_ClassifyCard(t *testing.T) {
	got, ok := extract.ClassifyCard("Gram Altın")
	require.True(t, ok)
	require.Equal(t, models.CategoryGold, got)

	got, ok = extract.ClassifyCard("Euro")
	require.True(t, ok)
	require.Equal(t, models.CategoryCurrency, got)

	// Cards never produce silver or other.
	_, ok = extract.ClassifyCard("Gümüş")
	require.False(t, ok)
	_, ok = extract.ClassifyCard("Sterlin")
	require.False(t, ok)
}
