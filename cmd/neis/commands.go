package main

import (
	"fmt"

	"github.com/Sternrassler/neis-client/pkg/school"
	"github.com/spf13/cobra"
)

func (a *app) schoolCmd() *cobra.Command {
	var (
		region string
		code   string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "school [name]",
		Short: "Search schools by name or code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRegion(region)
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("--limit must be >= 0")
			}

			query := school.AnySchool()
			switch {
			case code != "" && len(args) > 0:
				return fmt.Errorf("give either a name or --code, not both")
			case code != "":
				query = school.ByCode(code)
			case len(args) > 0:
				query = school.ByName(args[0])
			}

			a.logger.Debug().Str("query", query.String()).Str("region", string(r)).Msg("Searching schools")

			return a.withSchool(cmd.Context(), func(c *school.Client) error {
				schools, err := c.Schools(cmd.Context(), r, query, limit)
				if err != nil {
					return err
				}
				return a.render(schools, schoolTable(schools))
			})
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "", "office of education code or name")
	cmd.Flags().StringVar(&code, "code", "", "standard school code")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum schools to return (0 = all)")
	return cmd
}

func (a *app) scheduleCmd() *cobra.Command {
	var ref refFlags
	var dates dateFlags

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the academic calendar of a school",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := ref.ref()
			if err != nil {
				return err
			}
			filter, err := dates.filter()
			if err != nil {
				return err
			}

			return a.withSchool(cmd.Context(), func(c *school.Client) error {
				schedules, err := c.Schedules(cmd.Context(), r, filter)
				if err != nil {
					return err
				}
				return a.render(schedules, scheduleTable(schedules))
			})
		},
	}

	ref.register(cmd)
	dates.register(cmd)
	return cmd
}

func (a *app) mealCmd() *cobra.Command {
	var ref refFlags
	var dates dateFlags
	var mealTime string

	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Show the meal plans of a school",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := ref.ref()
			if err != nil {
				return err
			}
			filter, err := dates.filter()
			if err != nil {
				return err
			}
			only, err := parseMealTime(mealTime)
			if err != nil {
				return err
			}

			return a.withSchool(cmd.Context(), func(c *school.Client) error {
				meals, err := c.Meals(cmd.Context(), r, filter)
				if err != nil {
					return err
				}
				switch only {
				case school.Breakfast:
					meals = meals.Breakfasts()
				case school.Lunch:
					meals = meals.Lunches()
				case school.Dinner:
					meals = meals.Dinners()
				}
				return a.render(meals, mealTable(meals))
			})
		},
	}

	ref.register(cmd)
	dates.register(cmd)
	cmd.Flags().StringVar(&mealTime, "time", "", "only breakfast, lunch or dinner")
	return cmd
}

func (a *app) classroomCmd() *cobra.Command {
	var ref refFlags
	var year, grade int

	cmd := &cobra.Command{
		Use:   "classroom",
		Short: "List the classes of a school",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := ref.ref()
			if err != nil {
				return err
			}

			return a.withSchool(cmd.Context(), func(c *school.Client) error {
				rooms, err := c.Classrooms(cmd.Context(), r, year, grade)
				if err != nil {
					return err
				}
				return a.render(rooms, classroomTable(rooms))
			})
		},
	}

	ref.register(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "academic year (0 = all)")
	cmd.Flags().IntVar(&grade, "grade", 0, "grade (0 = all)")
	return cmd
}

func (a *app) lectureRoomCmd() *cobra.Command {
	var ref refFlags
	var year, grade, semester int

	cmd := &cobra.Command{
		Use:   "lectureroom",
		Short: "List the rooms a school schedules lessons in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := ref.ref()
			if err != nil {
				return err
			}

			return a.withSchool(cmd.Context(), func(c *school.Client) error {
				rooms, err := c.LectureRooms(cmd.Context(), r, year, grade, semester)
				if err != nil {
					return err
				}
				return a.render(rooms, lectureRoomTable(rooms))
			})
		},
	}

	ref.register(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "academic year (0 = all)")
	cmd.Flags().IntVar(&grade, "grade", 0, "grade (0 = all)")
	cmd.Flags().IntVar(&semester, "semester", 0, "semester (0 = all)")
	return cmd
}

func (a *app) timetableCmd() *cobra.Command {
	var ref refFlags
	var dates dateFlags
	var kindName string
	var grade int

	cmd := &cobra.Command{
		Use:   "timetable",
		Short: "Show timetable periods of a school",
		Long: `Show timetable periods of a school. Without --kind the school is
looked up first and the timetable service matching its category is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := ref.ref()
			if err != nil {
				return err
			}
			filter, err := dates.filter()
			if err != nil {
				return err
			}
			var kind school.TimetableKind
			if kindName != "" {
				if kind, err = parseTimetableKind(kindName); err != nil {
					return err
				}
			}

			return a.withSchool(cmd.Context(), func(c *school.Client) error {
				if kind == "" {
					info, err := c.School(cmd.Context(), r)
					if err != nil {
						return fmt.Errorf("look up school: %w", err)
					}
					var ok bool
					if kind, ok = info.Category.TimetableKind(); !ok {
						return fmt.Errorf("%s (%s) has no timetable service; pass --kind", info.Name, info.Category)
					}
					a.logger.Debug().Str("kind", string(kind)).Msg("Resolved timetable kind")
				}

				periods, err := c.Timetables(cmd.Context(), r, kind, filter, grade)
				if err != nil {
					return err
				}
				return a.render(periods, timetableTable(periods))
			})
		},
	}

	ref.register(cmd)
	dates.register(cmd)
	cmd.Flags().StringVar(&kindName, "kind", "", "timetable service: els, mis, his or sps")
	cmd.Flags().IntVar(&grade, "grade", 0, "grade (0 = all)")
	return cmd
}

func (a *app) departmentCmd() *cobra.Command {
	var ref refFlags

	cmd := &cobra.Command{
		Use:   "department",
		Short: "List the course tracks of a high school",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := ref.ref()
			if err != nil {
				return err
			}

			return a.withSchool(cmd.Context(), func(c *school.Client) error {
				departments, err := c.Departments(cmd.Context(), r)
				if err != nil {
					return err
				}
				return a.render(departments, departmentTable(departments))
			})
		},
	}

	ref.register(cmd)
	return cmd
}

func (a *app) majorCmd() *cobra.Command {
	var ref refFlags

	cmd := &cobra.Command{
		Use:   "major",
		Short: "List the majors of a high school",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := ref.ref()
			if err != nil {
				return err
			}

			return a.withSchool(cmd.Context(), func(c *school.Client) error {
				majors, err := c.Majors(cmd.Context(), r)
				if err != nil {
					return err
				}
				return a.render(majors, majorTable(majors))
			})
		},
	}

	ref.register(cmd)
	return cmd
}
