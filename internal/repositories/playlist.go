package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// PlaylistRepository implements models.Repository[string, *models.Playlist] over the playlist tree.
//
// Playlists are addressed by their unique name. Create and Update write a playlist together with its subtree.
type PlaylistRepository struct {
	db querier
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection or transaction
func NewPlaylistRepository(db querier) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts playlist and its children as a new root
func (r *PlaylistRepository) Create(playlist *models.Playlist) error {
	position, err := r.nextPosition(sql.NullInt64{})
	if err != nil {
		return err
	}
	return r.insert(playlist, sql.NullInt64{}, position)
}

func (r *PlaylistRepository) nextPosition(parent sql.NullInt64) (int, error) {
	var next int
	err := r.db.QueryRow(
		"SELECT COALESCE(MAX(position) + 1, 0) FROM playlists WHERE parent_id IS ?", parent,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get playlist position: %w", err)
	}
	return next, nil
}

func (r *PlaylistRepository) insert(p *models.Playlist, parent sql.NullInt64, position int) error {
	if p.Name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	if p.Folder && len(p.Tracks) > 0 {
		return fmt.Errorf("%w: %s", shared.ErrIsAFolder, p.Name)
	}

	result, err := r.db.Exec(
		"INSERT INTO playlists (parent_id, name, folder, position) VALUES (?, ?, ?, ?)",
		parent, p.Name, p.Folder, position,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist %s: %w", p.Name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get playlist id: %w", err)
	}

	if err := r.insertTracks(id, p.Tracks); err != nil {
		return err
	}
	for i, child := range p.Children {
		if err := r.insert(child, sql.NullInt64{Int64: id, Valid: true}, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlaylistRepository) insertTracks(playlistID int64, ids []models.TrackID) error {
	for i, trackID := range ids {
		_, err := r.db.Exec(
			"INSERT INTO playlist_tracks (playlist_id, position, track_id) VALUES (?, ?, ?)",
			playlistID, i, trackID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert playlist track %d: %w", trackID, err)
		}
	}
	return nil
}

func (r *PlaylistRepository) lookup(name string) (id int64, parent sql.NullInt64, position int, err error) {
	err = r.db.QueryRow("SELECT id, parent_id, position FROM playlists WHERE name = ?", name).Scan(&id, &parent, &position)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, parent, 0, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	if err != nil {
		return 0, parent, 0, fmt.Errorf("failed to get playlist: %w", err)
	}
	return id, parent, position, nil
}

// Get retrieves a playlist and its subtree by name
func (r *PlaylistRepository) Get(name string) (*models.Playlist, error) {
	id, _, _, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	all, err := r.loadAll()
	if err != nil {
		return nil, err
	}
	return all.build(id), nil
}

// Update replaces the stored playlist with the same name, keeping its place in the tree
func (r *PlaylistRepository) Update(playlist *models.Playlist) error {
	_, parent, position, err := r.lookup(playlist.Name)
	if err != nil {
		return err
	}
	if err := r.Delete(playlist.Name); err != nil {
		return err
	}
	return r.insert(playlist, parent, position)
}

// Delete removes a playlist; children and entries cascade
func (r *PlaylistRepository) Delete(name string) error {
	result, err := r.db.Exec("DELETE FROM playlists WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return expectRows(result, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name))
}

// DeleteAll removes every playlist
func (r *PlaylistRepository) DeleteAll() error {
	if _, err := r.db.Exec("DELETE FROM playlists"); err != nil {
		return fmt.Errorf("failed to delete playlists: %w", err)
	}
	return nil
}

// List retrieves the root playlists with their subtrees, in stored order
func (r *PlaylistRepository) List() ([]*models.Playlist, error) {
	all, err := r.loadAll()
	if err != nil {
		return nil, err
	}
	roots := make([]*models.Playlist, 0, len(all.roots))
	for _, id := range all.roots {
		roots = append(roots, all.build(id))
	}
	return roots, nil
}

type playlistRow struct {
	name   string
	folder bool
}

// playlistRows is the flat table contents, keyed by row id
type playlistRows struct {
	rows     map[int64]playlistRow
	children map[int64][]int64
	tracks   map[int64][]models.TrackID
	roots    []int64
}

func (all playlistRows) build(id int64) *models.Playlist {
	row := all.rows[id]
	p := &models.Playlist{Name: row.name, Folder: row.folder, Tracks: all.tracks[id]}
	for _, child := range all.children[id] {
		p.Children = append(p.Children, all.build(child))
	}
	return p
}

func (r *PlaylistRepository) loadAll() (playlistRows, error) {
	all := playlistRows{
		rows:     make(map[int64]playlistRow),
		children: make(map[int64][]int64),
		tracks:   make(map[int64][]models.TrackID),
	}

	rows, err := r.db.Query("SELECT id, parent_id, name, folder FROM playlists ORDER BY parent_id, position, id")
	if err != nil {
		return all, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int64
			parent sql.NullInt64
			row    playlistRow
		)
		if err := rows.Scan(&id, &parent, &row.name, &row.folder); err != nil {
			return all, fmt.Errorf("failed to scan playlist: %w", err)
		}
		all.rows[id] = row
		if parent.Valid {
			all.children[parent.Int64] = append(all.children[parent.Int64], id)
		} else {
			all.roots = append(all.roots, id)
		}
	}
	if err := rows.Err(); err != nil {
		return all, fmt.Errorf("row iteration error: %w", err)
	}

	trackRows, err := r.db.Query("SELECT playlist_id, track_id FROM playlist_tracks ORDER BY playlist_id, position")
	if err != nil {
		return all, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer trackRows.Close()

	for trackRows.Next() {
		var (
			playlistID int64
			trackID    models.TrackID
		)
		if err := trackRows.Scan(&playlistID, &trackID); err != nil {
			return all, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		all.tracks[playlistID] = append(all.tracks[playlistID], trackID)
	}
	if err := trackRows.Err(); err != nil {
		return all, fmt.Errorf("row iteration error: %w", err)
	}
	return all, nil
}
