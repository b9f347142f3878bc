package model

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"Batter", CategoryBatter, false},
		{"bowler", CategoryBowler, false},
		{" ALLROUNDER ", CategoryAllrounder, false},
		{"Wicketkeeper", CategoryWicketkeeper, false},
		{"All-rounder", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseNationality(t *testing.T) {
	if got, err := ParseNationality("foreign"); err != nil || got != NationalityForeign {
		t.Errorf("ParseNationality(foreign) = %q, %v", got, err)
	}
	if got, err := ParseNationality("Indian"); err != nil || got != NationalityIndian {
		t.Errorf("ParseNationality(Indian) = %q, %v", got, err)
	}
	if _, err := ParseNationality("Martian"); err == nil {
		t.Error("ParseNationality(Martian) expected error")
	}
}

func TestPlayerIsSold(t *testing.T) {
	if (Player{TeamBought: Unsold}).IsSold() {
		t.Error("Unsold player reported as sold")
	}
	if !(Player{TeamBought: "CSK"}).IsSold() {
		t.Error("CSK player reported as unsold")
	}
}

func TestEntryFor(t *testing.T) {
	p := Player{
		ID:          7,
		Name:        "Dhoni",
		SoldAmount:  1500,
		Rating:      90,
		TeamBought:  "CSK",
		Category:    CategoryWicketkeeper,
		Nationality: NationalityIndian,
	}

	e := EntryFor(p)

	if e.ID != 7 || e.Name != "Dhoni" || e.SoldAmount != 1500 || e.Rating != 90 {
		t.Errorf("EntryFor() = %+v", e)
	}
	if e.Category != CategoryWicketkeeper || e.Nationality != NationalityIndian {
		t.Errorf("EntryFor() enums = %q/%q", e.Category, e.Nationality)
	}
}

func TestTeamSpent(t *testing.T) {
	team := Team{Name: "CSK", Budget: 7500, InitialBudget: 9000}
	if team.Spent() != 1500 {
		t.Errorf("Spent() = %d, want 1500", team.Spent())
	}
}

func TestSaleNoticeMessage(t *testing.T) {
	n := SaleNotice{PlayerName: "Dhoni", Rating: 90, Team: "CSK", TeamRatingTotal: 90}
	want := "Congratulations Dhoni (90) | CSK (90)"
	if n.Message() != want {
		t.Errorf("Message() = %q, want %q", n.Message(), want)
	}
}

func TestCrore(t *testing.T) {
	if Crore(9000) != 90 {
		t.Errorf("Crore(9000) = %v, want 90", Crore(9000))
	}
	if Crore(1550) != 15.5 {
		t.Errorf("Crore(1550) = %v, want 15.5", Crore(1550))
	}
}
