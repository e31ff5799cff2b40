package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "neis",
		Short: "Query the NEIS school open-data hub",
		Long: `neis fetches school information, academic calendars, meal plans,
classes and timetables from the NEIS open-data hub (open.neis.go.kr).

Every command reads neis.yaml and NEIS_* environment variables; flags win.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default is ./neis.yaml)")
	pf.String("api-key", "", "open API key (env NEIS_API_KEY)")
	pf.String("base-url", "", "hub base URL")
	pf.StringP("output", "o", "table", "output format: table or json")
	pf.String("mode", "concurrent", "page fetch mode: sequential or concurrent")
	pf.Int("concurrency", 8, "maximum parallel page requests")
	pf.String("cache", "memory", "page cache: none, memory or redis")
	pf.String("redis-addr", "", "Redis address for the shared cache and quota state")
	pf.String("log-level", "warn", "log level: debug, info, warn, error or disabled")

	root.AddCommand(
		a.schoolCmd(),
		a.scheduleCmd(),
		a.mealCmd(),
		a.classroomCmd(),
		a.lectureRoomCmd(),
		a.timetableCmd(),
		a.departmentCmd(),
		a.majorCmd(),
		a.serveCmd(),
	)

	return root
}
