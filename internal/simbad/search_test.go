package simbad_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"specfetch/internal/services"
	"specfetch/internal/simbad"
)

const listingResponse = `C.D.S.  -  SIMBAD4 rel 1.7  -  2016.05.01CEST12:00:00

region(circle,icrs,152.09 +11.97,10m)
-------------------------------------

Number of objects : 2

#|identifier      |typ|coord1 (ICRS,J2000/2000)|pm              |plx    |Mag U |Mag B |Mag V |Mag R |Mag I |spec. type
-|----------------|---|------------------------|----------------|-------|------|------|------|------|------|----------
1|HD  87901       |PM*|152.09296 +11.96721     |-248.73 5.59    |41.13  |0.87  |1.27  |1.40  |~     |~     |B8IVn
2|BD+12  2149     |*  |152.20000 +11.90000     |~               |~      |~     |10.2  |9.8   |~     |~     |~
================================================================================
`

const singleObjectResponse = `C.D.S.  -  SIMBAD4 rel 1.7  -  2016.05.01CEST12:00:00

Vmag < 1.5 & dec > 11 & dec < 13
--------------------------------

Object HD  87901  ---  PM*  ---  OID=@1432018   (@@16187,0)  ---  coobox=1117

Coordinates(ICRS,ep=J2000,eq=2000): 152.09296 +11.96721 (Optical) [6.18 5.42 90] A 2007A&A...474..653V
`

type recordedRequest struct {
	rawQuery string
}

func newSearchServer(t *testing.T, body string, got *recordedRequest) *simbad.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simbad/sim-sam" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got != nil {
			got.rawQuery = r.URL.RawQuery
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return simbad.New(server.URL + "/simbad")
}

var nanEqual = cmpopts.EquateNaNs()

func TestEncodeCriteria(t *testing.T) {
	got := simbad.EncodeCriteria("region(circle,icrs,1 +2,3m) & otype='*'|a%#")
	want := "region%28circle%2cicrs%2c1+%2b2%2c3m%29+%26+otype='*'%7ca%25%23"
	if got != want {
		t.Fatalf("EncodeCriteria = %q, want %q", got, want)
	}
}

func TestSearchURL(t *testing.T) {
	client := simbad.New("")
	got := client.SearchURL("Vmag < 3", false, simbad.SearchOptions{Parallax: true})
	want := "http://simbad.u-strasbg.fr/simbad/sim-sam?output.format=ASCII&list.idopt=CATLIST&list.idcat=HD" +
		"&list.bibsel=off&list.notesel=off&obj.bibsel=off&obj.notesel=off&coodisp1=[d][2]" +
		"&Criteria=Vmag+<+3&OutputMode=LIST&maxObject=100" +
		"&list.fluxsel=on&U=off&R=off&B=on&V=on&list.pmsel=off&list.plxsel=on"
	if got != want {
		t.Fatalf("SearchURL mismatch\n got: %s\nwant: %s", got, want)
	}

	count := client.SearchURL("Vmag < 3", true, simbad.SearchOptions{MaxObjects: 5, OmitFluxes: true, ProperMotions: true})
	for _, fragment := range []string{"&OutputMode=COUNT", "&maxObject=5", "&list.fluxsel=off&list.pmsel=on&list.plxsel=off"} {
		if !strings.Contains(count, fragment) {
			t.Fatalf("expected %q in %s", fragment, count)
		}
	}
}

func TestConeCriteria(t *testing.T) {
	tests := []struct {
		cone simbad.Cone
		want string
	}{
		{simbad.Cone{RA: 152.09, Dec: 11.97, Radius: 10}, "region(circle,icrs,152.09 +11.97,10m)"},
		{simbad.Cone{RA: 83.8, Dec: -5.4, Radius: 0.5, Unit: simbad.Degrees, Frame: "FK5"}, "region(circle,fk5,83.8 -5.4,0.5d)"},
		{simbad.Cone{RA: 0, Dec: 0, Radius: 30, Unit: simbad.Arcseconds}, "region(circle,icrs,0 +0,30s)"},
	}
	for _, tt := range tests {
		got, err := tt.cone.Criteria()
		if err != nil {
			t.Fatalf("Criteria(%+v) error: %v", tt.cone, err)
		}
		if got != tt.want {
			t.Fatalf("Criteria(%+v) = %q, want %q", tt.cone, got, tt.want)
		}
	}
}

func TestConeCriteriaRejectsInvalid(t *testing.T) {
	for _, cone := range []simbad.Cone{
		{RA: 1, Dec: 1, Radius: 1, Unit: "h"},
		{RA: 1, Dec: 1, Radius: 0},
		{RA: 1, Dec: 1, Radius: math.NaN()},
		{RA: 1, Dec: 91, Radius: 1},
	} {
		if _, err := cone.Criteria(); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Criteria(%+v) expected validation error, got %v", cone, err)
		}
	}
}

func TestCoordSearchParsesListing(t *testing.T) {
	var req recordedRequest
	client := newSearchServer(t, listingResponse, &req)

	got, err := client.CoordSearch(context.Background(),
		simbad.Cone{RA: 152.09, Dec: 11.97, Radius: 10},
		simbad.SearchOptions{ProperMotions: true, Parallax: true})
	if err != nil {
		t.Fatalf("CoordSearch error: %v", err)
	}
	if !strings.Contains(req.rawQuery, "Criteria=region%28circle%2cicrs%2c152.09+%2b11.97%2c10m%29") {
		t.Fatalf("unexpected query %s", req.rawQuery)
	}

	nan := math.NaN()
	want := []simbad.Object{
		{
			Identifier: "HD 87901", ObjectType: "PM*",
			RA: 152.09296, Dec: 11.96721,
			PMRA: -248.73, PMDec: 5.59, Parallax: 41.13,
			Magnitudes:   simbad.Magnitudes{U: 0.87, B: 1.27, V: 1.40, R: nan, I: nan},
			SpectralType: "B8IVn",
		},
		{
			Identifier: "BD+12 2149", ObjectType: "*",
			RA: 152.2, Dec: 11.9,
			PMRA: nan, PMDec: nan, Parallax: nan,
			Magnitudes: simbad.Magnitudes{U: nan, B: 10.2, V: 9.8, R: nan, I: nan},
		},
	}
	if diff := cmp.Diff(want, got, nanEqual); diff != "" {
		t.Fatalf("objects mismatch (-want +got):\n%s", diff)
	}
}

func TestCritSearchSingleObject(t *testing.T) {
	client := newSearchServer(t, singleObjectResponse, nil)
	got, err := client.CritSearch(context.Background(), "Vmag < 1.5 & dec > 11 & dec < 13", simbad.SearchOptions{})
	if err != nil {
		t.Fatalf("CritSearch error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one object, got %+v", got)
	}
	obj := got[0]
	if obj.Identifier != "HD 87901" || obj.ObjectType != "PM*" || obj.RA != 152.09296 || obj.Dec != 11.96721 {
		t.Fatalf("unexpected object %+v", obj)
	}
	if !math.IsNaN(obj.Magnitudes.V) {
		t.Fatalf("single object page carries no magnitudes, got %v", obj.Magnitudes.V)
	}
}

func TestCritSearchNoMatch(t *testing.T) {
	client := newSearchServer(t, "::error:::::::::::::::::::::\n\nNo astronomical object found : \n", nil)
	got, err := client.CritSearch(context.Background(), "Vmag < -30", simbad.SearchOptions{})
	if err != nil {
		t.Fatalf("CritSearch error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCritSearchRejectedCriteria(t *testing.T) {
	client := newSearchServer(t, "::error:::::::::::::::::::::\n\n[1] Unknown field: vmagg\n", nil)
	_, err := client.CritSearch(context.Background(), "vmagg < 3", simbad.SearchOptions{})
	if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), "Unknown field") {
		t.Fatalf("expected validation error naming the field, got %v", err)
	}
}

func TestCritSearchEmptyCriteria(t *testing.T) {
	_, err := simbad.New("").CritSearch(context.Background(), " ", simbad.SearchOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCritSearchMalformedRow(t *testing.T) {
	body := "Number of objects : 1\n\n#|identifier|typ|coord1 (ICRS,J2000/2000)\n1|HD 1|*|north east\n"
	client := newSearchServer(t, body, nil)
	_, err := client.CritSearch(context.Background(), "otype = '*'", simbad.SearchOptions{})
	if !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestCritCount(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"colon", "region(circle,icrs,1 +1,1d)\n\nNumber of objects : 42\n", 42},
		{"equals", "::data::::::::\n\ncount = 17\n", 17},
		{"none", "No astronomical object found : \n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req recordedRequest
			client := newSearchServer(t, tt.body, &req)
			got, err := client.CritCount(context.Background(), "otype = 'WD'")
			if err != nil {
				t.Fatalf("CritCount error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("CritCount = %d, want %d", got, tt.want)
			}
			if !strings.Contains(req.rawQuery, "OutputMode=COUNT") {
				t.Fatalf("expected COUNT mode in %s", req.rawQuery)
			}
		})
	}
}

func TestCritCountMalformed(t *testing.T) {
	client := newSearchServer(t, "Number of objects : many\n", nil)
	if _, err := client.CritCount(context.Background(), "otype = 'WD'"); !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}
