package models

import (
	"slices"
	"testing"
)

func TestTrack(t *testing.T) {
	t.Run("InvolvedArtists", func(t *testing.T) {
		tc := []struct {
			name  string
			track Track
			want  []string
		}{
			{name: "artist only", track: Track{Artist: "A"}, want: []string{"A"}},
			{name: "artist and album artist", track: Track{Artist: "A", AlbumArtist: "Various"}, want: []string{"A", "Various"}},
			{name: "same names collapse", track: Track{Artist: "A", AlbumArtist: " A "}, want: []string{"A"}},
			{name: "blank", track: Track{Artist: "  "}, want: nil},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.track.InvolvedArtists(); !slices.Equal(got, tt.want) {
					t.Errorf("InvolvedArtists() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := (Track{Title: "x"}).Validate(); err != nil {
			t.Errorf("expected valid track, got %v", err)
		}
		if err := (Track{}).Validate(); err == nil {
			t.Error("expected error for track without path or title")
		}
		if err := (Track{Title: "x", TrackNumber: -1}).Validate(); err == nil {
			t.Error("expected error for negative track number")
		}
	})

	t.Run("ParseTrackID", func(t *testing.T) {
		id, err := ParseTrackID(" 42 ")
		if err != nil || id != 42 {
			t.Errorf("ParseTrackID() = %v, %v", id, err)
		}
		for _, bad := range []string{"", "0", "-3", "abc"} {
			if _, err := ParseTrackID(bad); err == nil {
				t.Errorf("ParseTrackID(%q) should fail", bad)
			}
		}
	})
}

func TestCompareEntries(t *testing.T) {
	entries := []AlbumEntry{
		{ID: 5, Track: Track{DiscNumber: 2, TrackNumber: 1, Title: "e"}},
		{ID: 4, Track: Track{DiscNumber: 1, TrackNumber: 2, Title: "b"}},
		{ID: 3, Track: Track{DiscNumber: 1, TrackNumber: 2, Title: "a"}},
		{ID: 2, Track: Track{DiscNumber: 1, TrackNumber: 1, Title: "z"}},
		{ID: 1, Track: Track{DiscNumber: 1, TrackNumber: 2, Title: "a"}},
	}

	slices.SortFunc(entries, CompareEntries)

	var got []TrackID
	for _, e := range entries {
		got = append(got, e.ID)
	}
	want := []TrackID{2, 1, 3, 4, 5}
	if !slices.Equal(got, want) {
		t.Errorf("sorted ids = %v, want %v", got, want)
	}
}

func TestArtistAlbums(t *testing.T) {
	albums := ArtistAlbums{
		"Y": {{ID: 2}, {ID: 1}},
		"X": {{ID: 1}, {ID: 3}},
	}

	if got := albums.Albums(); !slices.Equal(got, []string{"X", "Y"}) {
		t.Errorf("Albums() = %v", got)
	}
	if got := albums.TrackIDs(); !slices.Equal(got, []TrackID{1, 3, 2}) {
		t.Errorf("TrackIDs() = %v", got)
	}
	if albums.Len() != 4 {
		t.Errorf("Len() = %d, want 4", albums.Len())
	}

	clone := albums.Clone()
	clone["X"][0].ID = 99
	if albums["X"][0].ID != 1 {
		t.Error("Clone should not share entry slices")
	}
}

func TestPlaylist(t *testing.T) {
	folder := &Playlist{
		Name:   "Folder",
		Folder: true,
		Children: []*Playlist{
			{Name: "A", Tracks: []TrackID{1, 2}},
			{Name: "Sub", Folder: true, Children: []*Playlist{{Name: "B", Tracks: []TrackID{2, 3}}}},
		},
	}

	if got := folder.AllTracks(); !slices.Equal(got, []TrackID{1, 2, 3}) {
		t.Errorf("AllTracks() = %v", got)
	}

	var names []string
	folder.Walk(func(p *Playlist) bool {
		names = append(names, p.Name)
		return p.Name != "Sub"
	})
	if !slices.Equal(names, []string{"Folder", "A", "Sub"}) {
		t.Errorf("Walk visited %v", names)
	}

	clone := folder.Clone()
	clone.Children[0].Tracks[0] = 42
	if folder.Children[0].Tracks[0] != 1 {
		t.Error("Clone should deep copy tracks")
	}
}
