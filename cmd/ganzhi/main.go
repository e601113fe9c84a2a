// Command ganzhi derives a chart for one moment from the command line.
//
// Examples:
//
//	ganzhi -date 1990-06-15 -time 14:30 -tz Asia/Shanghai
//	ganzhi -date 1990-06-15 -time 14:30 -lon 116.4 -lat 39.9 -solar
//	ganzhi -date 2024-06-01 -ref 丁 -event wedding -window 30
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mingxia/ganzhi-api/internal/ganzhi"
	"github.com/mingxia/ganzhi-api/internal/lunar"
)

func main() {
	var (
		dateStr = flag.String("date", "", "Date to derive, YYYY-MM-DD (required)")
		timeStr = flag.String("time", "", "Clock time, HH:MM (omit for a three-pillar chart)")
		tzName  = flag.String("tz", "Asia/Shanghai", "IANA timezone of the moment")
		lon     = flag.Float64("lon", 0, "Longitude in degrees east")
		lat     = flag.Float64("lat", 0, "Latitude in degrees north")
		solar   = flag.Bool("solar", false, "Apply the true-solar-time correction")
		ref     = flag.String("ref", "", "Reference day stem; ranks upcoming days instead")
		event   = flag.String("event", "wedding", "Event profile for ranking")
		window  = flag.Int("window", ganzhi.DefaultWindow, "Days to score when ranking")
	)
	flag.Parse()

	if *dateStr == "" {
		fmt.Fprintln(os.Stderr, "error: -date is required")
		flag.Usage()
		os.Exit(2)
	}

	date, err := time.Parse("2006-01-02", *dateStr)
	if err != nil {
		fatalf("invalid -date %q: use YYYY-MM-DD", *dateStr)
	}

	loc, err := time.LoadLocation(*tzName)
	if err != nil {
		fatalf("unknown timezone %q", *tzName)
	}

	cal, err := lunar.NewCalendar()
	if err != nil {
		fatalf("load calendar: %v", err)
	}

	if *ref != "" {
		rankAndPrint(cal, *ref, *event, date, *window)
		return
	}

	moment := ganzhi.Moment{
		Year:      date.Year(),
		Month:     date.Month(),
		Day:       date.Day(),
		Location:  loc,
		Longitude: *lon,
		Latitude:  *lat,
		TrueSolar: *solar,
	}

	if *timeStr != "" {
		t, err := time.Parse("15:04", *timeStr)
		if err != nil {
			fatalf("invalid -time %q: use HH:MM", *timeStr)
		}
		moment.Hour = t.Hour()
		moment.Minute = t.Minute()
		moment.HasTime = true
	}

	chart, err := ganzhi.BuildChart(cal, moment)
	if err != nil {
		fatalf("derive chart: %v", err)
	}

	printChart(chart)
}

func printChart(c *ganzhi.Chart) {
	fmt.Printf("年柱  %s\n", c.Year)
	fmt.Printf("月柱  %s\n", c.Month)
	fmt.Printf("日柱  %s\n", c.Day)
	if c.HasHour {
		fmt.Printf("时柱  %s\n", c.Hour)
	} else {
		fmt.Println("时柱  (未知)")
	}

	if c.LunarMonth != "" {
		label := c.LunarMonth + c.LunarDay
		if c.LeapMonth {
			label = "闰" + label
		}
		fmt.Printf("\n农历  %s\n", label)
	}
	if c.SolarTerm != "" {
		fmt.Printf("节气  %s\n", c.SolarTerm)
	}

	fmt.Println("\n五行:")
	for e := ganzhi.Metal; e <= ganzhi.Earth; e++ {
		fmt.Printf("  %s  %3d%%\n", e, c.Elements[e])
	}

	if len(c.ShenSha) > 0 {
		fmt.Println("\n神煞:")
		for _, s := range c.ShenSha {
			fmt.Printf("  %s\n", s)
		}
	}
}

func rankAndPrint(cal *lunar.Calendar, refStem, eventKey string, start time.Time, window int) {
	ec, ok := ganzhi.EventCategoryByKey(eventKey)
	if !ok {
		fatalf("unknown event %q", eventKey)
	}

	ranking, err := ganzhi.RankDays(cal, refStem, ec, start, window)
	if err != nil {
		fatalf("rank days: %v", err)
	}

	fmt.Printf("%s（日主 %s，自 %s 起 %d 天）\n\n", ec.Name, refStem, start.Format("2006-01-02"), window)

	fmt.Println("上选:")
	for _, d := range ranking.Top {
		printCandidate(d)
	}
	if len(ranking.Next) > 0 {
		fmt.Println("\n次选:")
		for _, d := range ranking.Next {
			printCandidate(d)
		}
	}
}

func printCandidate(d ganzhi.DayCandidate) {
	fmt.Printf("  %s  %s  %s  %d分\n",
		d.Date.Format("2006-01-02"), d.Pillar, d.Relation, d.Score)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
