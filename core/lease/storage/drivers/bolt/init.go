package bolt

import (
	"fmt"

	"github.com/nexttether/nexttether/core/lease/storage"
)

func init() {
	storage.MustRegister("bolt", func(opts map[string][]string) (storage.LeaseStorage, error) {
		path := ""

		if args, ok := opts["__args__"]; ok && len(args) > 0 {
			path = args[0]
		}

		if file, ok := opts["file"]; ok && len(file) > 0 {
			path = file[0]
		}

		if path == "" {
			return nil, fmt.Errorf("bolt: no database file configured")
		}

		return Open(path)
	})
}
