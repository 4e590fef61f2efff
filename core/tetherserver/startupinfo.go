package tetherserver

import "fmt"

func getStartupInfo(cfg []*Config) string {
	s := ""

	for _, c := range cfg {
		s += fmt.Sprintf("\t%s on %s (%s, %s)\n", c.Network.String(), c.IP, c.Interface.Name, c.Type)
	}

	if s != "" {
		s = "Sharing connectivity on the following downstreams\n" + s
	}

	return s
}
