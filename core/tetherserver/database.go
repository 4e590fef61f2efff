package tetherserver

import "github.com/nexttether/nexttether/core/lease"

func openDatabase(c *Config) error {
	// if the database directive already configured one we can bail out
	if c.Database != nil {
		return nil
	}

	db, err := lease.Open("", map[string][]string{})
	if err != nil {
		return err
	}

	c.Database = db

	return nil
}
