// Package school maps NEIS open-data rows to typed records and exposes one
// operation per hub service.
//
// Example usage:
//
//	err := client.WithSession(client.DefaultConfig(key), func(s *client.Session) error {
//		c := school.New(s, pagination.DefaultConfig())
//		info, err := c.School(ctx, school.SchoolRef{Code: "7010536", Region: school.RegionSeoul})
//		if err != nil {
//			return err
//		}
//		meals, err := c.Meals(ctx, info.Ref(), school.OnDate(time.Now()))
//		...
//	})
//
// Queries that match nothing fail with client.ErrNotFound rather than
// returning an empty slice.
package school
