package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterOfMonth(t *testing.T) {
	expected := map[int]int{
		1: 1, 2: 1, 3: 1,
		4: 2, 5: 2, 6: 2,
		7: 3, 8: 3, 9: 3,
		10: 4, 11: 4, 12: 4,
	}
	for month := 1; month <= 12; month++ {
		assert.Equal(t, expected[month], QuarterOfMonth(month), "month %d", month)
	}
}

func TestFilingRecordQuarter(t *testing.T) {
	tests := []struct {
		reportDate string
		quarter    int
		ok         bool
	}{
		{"2022-03-26", 1, true},
		{"2022-06-25", 2, true},
		{"2022-09-24", 3, true},
		{"2022-12-31", 4, true},
		{"2022-01-01", 1, true},
		{"", 0, false},
		{"2022", 0, false},
		{"2022-xx-01", 0, false},
		{"2022-00-01", 0, false},
		{"2022-13-01", 0, false},
	}

	for _, tt := range tests {
		record := FilingRecord{ReportDate: tt.reportDate}
		quarter, ok := record.Quarter()
		assert.Equal(t, tt.ok, ok, "report date %q", tt.reportDate)
		if tt.ok {
			assert.Equal(t, tt.quarter, quarter, "report date %q", tt.reportDate)
		}
	}
}

func TestFilingRecordFilingYear(t *testing.T) {
	tests := []struct {
		filingDate string
		year       int
		ok         bool
	}{
		{"2022-02-15", 2022, true},
		{"1999-12-31", 1999, true},
		{"", 0, false},
		{"20a2-02-15", 0, false},
		{"bad", 0, false},
	}

	for _, tt := range tests {
		record := FilingRecord{FilingDate: tt.filingDate}
		year, ok := record.FilingYear()
		assert.Equal(t, tt.ok, ok, "filing date %q", tt.filingDate)
		if tt.ok {
			assert.Equal(t, tt.year, year, "filing date %q", tt.filingDate)
		}
	}
}

func TestFilingsRecords(t *testing.T) {
	var filings Filings
	filings.Recent.Form = []string{"10-K", "10-Q", "8-K", "10-K", "10-K"}
	filings.Recent.AccessionNumber = []string{"a-1", "a-2", "a-3", "a-4"}
	filings.Recent.FilingDate = []string{"2023-10-27", "2023-02-02", "2023-01-15", "2022-10-28"}
	filings.Recent.ReportDate = []string{"2023-09-30", "2022-12-31", "2023-01-10", "2022-09-24"}

	records := filings.Records(Form10K)

	// The fifth form entry has no counterpart in the other arrays and is
	// skipped rather than failing the conversion.
	require.Len(t, records, 2)
	assert.Equal(t, FilingRecord{
		AccessionNumber: "a-1",
		FilingDate:      "2023-10-27",
		ReportDate:      "2023-09-30",
		Form:            "10-K",
	}, records[0])
	assert.Equal(t, "a-4", records[1].AccessionNumber)

	quarterly := filings.Records(Form10Q)
	require.Len(t, quarterly, 1)
	assert.Equal(t, "a-2", quarterly[0].AccessionNumber)
}

func TestLoadFilings(t *testing.T) {
	const submissionsJSON = `{
		"cik": "320193",
		"name": "Test Corp",
		"filings": {
			"recent": {
				"accessionNumber": ["0000320193-22-000108", "0000320193-22-000059"],
				"filingDate": ["2022-10-28", "2022-07-29"],
				"reportDate": ["2022-09-24", "2022-06-25"],
				"form": ["10-K", "10-Q"]
			}
		}
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submissions/CIK0000320193.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(submissionsJSON))
	}))
	defer server.Close()

	client := NewClient("test", time.Millisecond)
	client.SubmissionsURL = server.URL

	list := client.LoadFilings(context.Background(), "0000320193", Form10K)
	require.NoError(t, list.Err)
	require.Len(t, list.Records, 1)
	assert.Equal(t, "0000320193-22-000108", list.Records[0].AccessionNumber)
	assert.Equal(t, "2022-10-28", list.Records[0].FilingDate)
}

func TestLoadFilingsDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test", time.Millisecond)
	client.SubmissionsURL = server.URL

	list := client.LoadFilings(context.Background(), "0000320193", Form10K)
	assert.Error(t, list.Err)
	assert.Empty(t, list.Records)
}

func TestFilingTypeValid(t *testing.T) {
	assert.True(t, Form10K.Valid())
	assert.True(t, Form10Q.Valid())
	assert.False(t, FilingType("8-K").Valid())
	assert.False(t, FilingType("").Valid())
}
