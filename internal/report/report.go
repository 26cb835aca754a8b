// Package report reduces finalized bookings into sales summaries.
package report

import (
	"sort"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

// CinemaRevenue is the revenue earned by one cinema.
type CinemaRevenue struct {
	CinemaID   uint64      `json:"cinema_id"`
	CinemaName string      `json:"cinema_name"`
	Bookings   int         `json:"bookings"`
	Revenue    model.Cents `json:"revenue_cents"`
}

// MovieSales is the revenue and ticket count of one movie.
type MovieSales struct {
	MovieID    uint64      `json:"movie_id"`
	MovieTitle string      `json:"movie_title"`
	Tickets    int         `json:"tickets"`
	Revenue    model.Cents `json:"revenue_cents"`
}

// DailyRevenue is the revenue of one calendar day.
type DailyRevenue struct {
	Date     string      `json:"date"` // YYYY-MM-DD
	Bookings int         `json:"bookings"`
	Revenue  model.Cents `json:"revenue_cents"`
}

// SalesReport summarizes bookings created within [From, To].
type SalesReport struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	TotalBookings int             `json:"total_bookings"`
	TotalRevenue  model.Cents     `json:"total_revenue_cents"`
	SeatsSold     int             `json:"seats_sold"`
	SnacksSold    int             `json:"snacks_sold"`
	ByCinema      []CinemaRevenue `json:"by_cinema"`
	ByMovie       []MovieSales    `json:"by_movie"`
	ByDay         []DailyRevenue  `json:"by_day"`
}

const dateLayout = "2006-01-02"

// Generate filters records by creation date, interpreted in loc, to the
// inclusive day range [from, to] and aggregates them.  Only the calendar
// date of from and to is used.  A nil loc means UTC.
func Generate(records []model.BookingRecord, from, to time.Time, loc *time.Location) SalesReport {
	if loc == nil {
		loc = time.UTC
	}
	fromDay := day(from, loc)
	toDay := day(to, loc)

	rep := SalesReport{
		From:     fromDay.Format(dateLayout),
		To:       toDay.Format(dateLayout),
		ByCinema: []CinemaRevenue{},
		ByMovie:  []MovieSales{},
		ByDay:    []DailyRevenue{},
	}

	cinemas := map[uint64]*CinemaRevenue{}
	movies := map[uint64]*MovieSales{}
	days := map[string]*DailyRevenue{}

	for _, r := range records {
		d := day(r.CreatedAt, loc)
		if d.Before(fromDay) || d.After(toDay) {
			continue
		}
		rep.TotalBookings++
		rep.TotalRevenue += r.TotalCents
		rep.SeatsSold += len(r.Seats)
		rep.SnacksSold += len(r.Snacks)

		c, ok := cinemas[r.CinemaID]
		if !ok {
			c = &CinemaRevenue{CinemaID: r.CinemaID, CinemaName: r.CinemaName}
			cinemas[r.CinemaID] = c
		}
		c.Bookings++
		c.Revenue += r.TotalCents

		m, ok := movies[r.MovieID]
		if !ok {
			m = &MovieSales{MovieID: r.MovieID, MovieTitle: r.MovieTitle}
			movies[r.MovieID] = m
		}
		m.Tickets += len(r.Seats)
		m.Revenue += r.TotalCents

		key := d.Format(dateLayout)
		dr, ok := days[key]
		if !ok {
			dr = &DailyRevenue{Date: key}
			days[key] = dr
		}
		dr.Bookings++
		dr.Revenue += r.TotalCents
	}

	for _, c := range cinemas {
		rep.ByCinema = append(rep.ByCinema, *c)
	}
	sort.Slice(rep.ByCinema, func(i, j int) bool { return rep.ByCinema[i].CinemaID < rep.ByCinema[j].CinemaID })
	for _, m := range movies {
		rep.ByMovie = append(rep.ByMovie, *m)
	}
	sort.Slice(rep.ByMovie, func(i, j int) bool { return rep.ByMovie[i].MovieID < rep.ByMovie[j].MovieID })
	for _, d := range days {
		rep.ByDay = append(rep.ByDay, *d)
	}
	// YYYY-MM-DD sorts lexically in date order.
	sort.Slice(rep.ByDay, func(i, j int) bool { return rep.ByDay[i].Date < rep.ByDay[j].Date })
	return rep
}

// day truncates t to midnight of its calendar date in loc.
func day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
