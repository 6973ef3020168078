package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhasebe-app/muhasebe_backend/internal/core/services"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

func newTestExtractor() *services.ExtractionService {
	return services.NewExtractionService("TRY", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestExtract_TypicalTurkishReceipt(t *testing.T) {
	extractor := newTestExtractor()

	raw := "MİGROS TİCARET A.Ş.\n" +
		"Atatürk Cad. No: 12 Kadıköy\n" +
		"VKN: 1234567890\n" +
		"FİŞ NO: AB-12345\n" +
		"15.08.2023 14:32\n" +
		"EKMEK            *7,50\n" +
		"SÜT             *42,00\n" +
		"TOPLAM       *1.234,56\n" +
		"KDV %18         188,32\n"

	result := extractor.Extract(raw)

	require.NotNil(t, result.VendorName)
	assert.Equal(t, "MİGROS TİCARET A.Ş.", *result.VendorName)

	require.NotNil(t, result.TaxID)
	assert.Equal(t, "1234567890", *result.TaxID)

	require.NotNil(t, result.DocDate)
	assert.Equal(t, time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC), *result.DocDate)

	require.NotNil(t, result.DocNo)
	assert.Equal(t, "AB-12345", *result.DocNo)

	require.NotNil(t, result.TotalGross)
	assert.True(t, result.TotalGross.Equal(decimal.RequireFromString("1234.56")))

	require.NotNil(t, result.TotalTax)
	assert.True(t, result.TotalTax.Equal(decimal.RequireFromString("188.32")))

	require.NotNil(t, result.TotalNet)
	assert.True(t, result.TotalNet.Equal(decimal.RequireFromString("1046.24")))

	assert.Equal(t, 0.9, result.FieldConfidences[models.FieldTotalGross])
	assert.Equal(t, 0.9, result.FieldConfidences[models.FieldDocDate])
}

func TestExtract_DotDecimalTotal(t *testing.T) {
	extractor := newTestExtractor()

	result := extractor.Extract("KAHVE DÜNYASI\nTOPLAM 123.45\n")

	require.NotNil(t, result.TotalGross)
	assert.True(t, result.TotalGross.Equal(decimal.RequireFromString("123.45")))
	assert.Equal(t, 0.9, result.FieldConfidences[models.FieldTotalGross])
}

func TestExtract_AnchoredTotalBeatsLargerUnanchoredAmount(t *testing.T) {
	extractor := newTestExtractor()

	// The card number line contains larger digit runs, but only the anchored
	// line should be considered for the total.
	raw := "BİM A.Ş.\n" +
		"ÜRÜN A        *25,00\n" +
		"ÜRÜN B        *60,50\n" +
		"TOPLAM        *85,50\n"

	result := extractor.Extract(raw)

	require.NotNil(t, result.TotalGross)
	assert.True(t, result.TotalGross.Equal(decimal.RequireFromString("85.50")))
}

func TestExtract_FallbackTotalUsesLargestAmount(t *testing.T) {
	extractor := newTestExtractor()

	raw := "A101\nürün 12,50\nürün 45,90\nürün 8,75\n"
	result := extractor.Extract(raw)

	require.NotNil(t, result.TotalGross)
	assert.True(t, result.TotalGross.Equal(decimal.RequireFromString("45.90")))
	assert.Equal(t, 0.5, result.FieldConfidences[models.FieldTotalGross])
}

func TestExtract_DateFormats(t *testing.T) {
	extractor := newTestExtractor()

	cases := map[string]time.Time{
		"Tarih: 15.08.2023":  time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC),
		"Tarih: 15/08/2023":  time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC),
		"Tarih: 15-08-2023":  time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC),
		"Tarih: 2023.08.15":  time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC),
		"15 Ağustos 2023":    time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC),
		"3 Ocak 2024 fatura": time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}

	for raw, want := range cases {
		result := extractor.Extract("VENDOR AŞ\n" + raw)
		require.NotNil(t, result.DocDate, "input: %s", raw)
		assert.Equal(t, want, *result.DocDate, "input: %s", raw)
	}
}

func TestExtract_RejectsImpossibleDates(t *testing.T) {
	extractor := newTestExtractor()

	for _, raw := range []string{
		"Tarih: 31.02.2023", // normalizes away
		"Tarih: 15.08.1999", // before epoch
		"Tarih: 15.08.2093", // in the future
	} {
		result := extractor.Extract("VENDOR AŞ\n" + raw)
		assert.Nil(t, result.DocDate, "input: %s", raw)
		assert.Equal(t, 0.0, result.FieldConfidences[models.FieldDocDate], "input: %s", raw)
	}
}

func TestExtract_TaxRateLineYieldsAmountNotRate(t *testing.T) {
	extractor := newTestExtractor()

	result := extractor.Extract("MARKET\nTOPLAM *118,00\nKDV %18: 18,00\n")

	require.NotNil(t, result.TotalTax)
	assert.True(t, result.TotalTax.Equal(decimal.RequireFromString("18.00")))
}

func TestExtract_TaxGreaterThanGrossIsDiscarded(t *testing.T) {
	extractor := newTestExtractor()

	result := extractor.Extract("MARKET\nTOPLAM *10,00\nKDV 999,00\n")

	require.NotNil(t, result.TotalGross)
	assert.Nil(t, result.TotalTax)
	assert.Nil(t, result.TotalNet)
	assert.Equal(t, 0.0, result.FieldConfidences[models.FieldTotalTax])
}

func TestExtract_VendorSkipsAddressAndNumericLines(t *testing.T) {
	extractor := newTestExtractor()

	raw := "0216 123 45 67\n" +
		"Bağdat Cad. No: 5\n" +
		"CARREFOURSA\n" +
		"TOPLAM *50,00\n"

	result := extractor.Extract(raw)

	require.NotNil(t, result.VendorName)
	assert.Equal(t, "CARREFOURSA", *result.VendorName)
}

func TestExtract_EmptyText(t *testing.T) {
	extractor := newTestExtractor()

	result := extractor.Extract("   \n  ")

	assert.Nil(t, result.VendorName)
	assert.Nil(t, result.DocDate)
	assert.Nil(t, result.TotalGross)
	assert.Equal(t, "TRY", result.Currency)
	assert.Equal(t, 0.0, result.MeanFieldConfidence())
}

func TestExtract_CurrencyDetection(t *testing.T) {
	extractor := newTestExtractor()

	result := extractor.Extract("HOTEL INVOICE\nTOTAL 120.00 EUR\n")
	assert.Equal(t, "EUR", result.Currency)

	result = extractor.Extract("MARKET\nTOPLAM *50,00 TL\n")
	assert.Equal(t, "TRY", result.Currency)

	// No signal falls back to the configured default.
	result = extractor.Extract("MARKET\nTOPLAM *50,00\n")
	assert.Equal(t, "TRY", result.Currency)
	assert.Equal(t, 0.0, result.FieldConfidences[models.FieldCurrency])
}

func TestMeanFieldConfidence(t *testing.T) {
	extractor := newTestExtractor()

	result := extractor.Extract("MİGROS TİCARET A.Ş.\nVKN: 1234567890\n15.08.2023\nFİŞ NO: 1\nTOPLAM *100,00\nKDV 18,00\n")

	// All six scored fields resolved: (0.8+0.9+0.9+0.7+0.9+0.85)/6
	assert.InDelta(t, 0.841, result.MeanFieldConfidence(), 0.01)
}
