package workspace

import (
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/flock"

	"mx/internal/tracelog"
)

const (
	archiveFileName = "file-map.cbor"
	archiveLockName = "file-map.lock"
)

// readFilesArchive loads the persisted {path -> (hash, metadata)} map from
// cacheDir. A missing or undecodable archive is treated as absent.
func readFilesArchive(cacheDir string, log *tracelog.Logger) map[string]archiveEntry {
	lock := flock.New(filepath.Join(cacheDir, archiveLockName))
	if err := lock.RLock(); err == nil {
		defer lock.Unlock()
	}

	data, err := os.ReadFile(filepath.Join(cacheDir, archiveFileName))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read files archive", "err", err.Error())
		}
		return nil
	}
	var archived map[string]archiveEntry
	if err := cbor.Unmarshal(data, &archived); err != nil {
		log.Warn("could not decode files archive", "err", err.Error())
		return nil
	}
	return archived
}

// writeFilesArchive persists the merged file map. Written to a temp file and
// renamed so readers never see a partial archive.
func writeFilesArchive(cacheDir string, files map[string]archiveEntry, log *tracelog.Logger) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Warn("could not create cache dir", "dir", cacheDir, "err", err.Error())
		return
	}

	lock := flock.New(filepath.Join(cacheDir, archiveLockName))
	if err := lock.Lock(); err == nil {
		defer lock.Unlock()
	}

	data, err := cbor.Marshal(files)
	if err != nil {
		log.Warn("could not encode files archive", "err", err.Error())
		return
	}
	tmp := filepath.Join(cacheDir, archiveFileName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Warn("could not write files archive", "err", err.Error())
		return
	}
	if err := os.Rename(tmp, filepath.Join(cacheDir, archiveFileName)); err != nil {
		log.Warn("could not move files archive into place", "err", err.Error())
	}
}
