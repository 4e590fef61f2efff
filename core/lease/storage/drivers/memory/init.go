package memory

import "github.com/nexttether/nexttether/core/lease/storage"

func init() {
	storage.MustRegister("memory", func(_ map[string][]string) (storage.LeaseStorage, error) {
		return makeStorage(), nil
	})
}
