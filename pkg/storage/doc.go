// Package storage manages the on-disk audio tree.
//
// Every file lives at <output>/<category>/<filename>. A Key names that
// location, and the presence of a file at the key's path is the only
// duplicate check: a key that exists is never downloaded again, while the
// same audio saved under two different names is not detected.
//
// Writes go to a hidden temporary file in the category directory and are
// renamed into place, so an interrupted download never leaves a partial
// file under the final name. The SHA-256 of every saved file is computed
// while writing and returned to the caller for record keeping.
//
// Usage:
//
//	manager, err := storage.NewManager("./audio", []string{"ambiance", "npc"})
//	key := storage.KeyFor("ambiance", "forest ambiance", 1, link)
//	if !manager.Exists(key) {
//	    saved, err := manager.Save(key, bytes.NewReader(data))
//	}
package storage
