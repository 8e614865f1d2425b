// Granule catalog API
package main

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"

	reuseport "github.com/kavu/go_reuseport"
	_ "github.com/lib/pq"
	"github.com/nci/gomemcache/memcache"
)

var (
	db       *sql.DB
	mc       *memcache.Client
	dbName   = flag.String("database", "gowarp", "database name")
	dbUser   = flag.String("user", "api", "database user name")
	dbPool   = flag.Int("pool", 8, "database pool size")
	dbLimit  = flag.Int("limit", 64, "database concurrent requests")
	httpPort = flag.Int("port", 8080, "http port")
	mcURI    = flag.String("memcache", "", "memcache uri host:port")
)

// Granule is one catalogued file plus the georeferencing the crawler
// extracted from it.
type Granule struct {
	Path         string    `json:"path"`
	SRS          string    `json:"srs"`
	GeoTransform []float64 `json:"geotransform,omitempty"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Bands        int       `json:"bands"`
	DataType     string    `json:"data_type"`
	NoData       *float64  `json:"nodata,omitempty"`
}

// Spit out a simple JSON-formatted error message for Content-Type: application/json
func httpJSONError(response http.ResponseWriter, err error, status int) {
	http.Error(response, fmt.Sprintf(`{ "error": %q }`, err.Error()), status)
}

func registerHandler(response http.ResponseWriter, request *http.Request) {
	response.Header().Set("Content-Type", "application/json")

	if request.Method != "POST" {
		httpJSONError(response, errors.New("register requires POST"), 405)
		return
	}

	body, err := ioutil.ReadAll(request.Body)
	if err != nil {
		httpJSONError(response, err, 400)
		return
	}

	var g Granule
	if err := json.Unmarshal(body, &g); err != nil {
		httpJSONError(response, err, 400)
		return
	}
	if g.Path == "" {
		httpJSONError(response, errors.New("granule has no path"), 400)
		return
	}
	gtJSON, _ := json.Marshal(g.GeoTransform)

	_, err = db.Exec(
		`insert into granules (path, srs, geotransform, width, height, bands, data_type, nodata)
		values ($1, $2, $3::jsonb, $4, $5, $6, $7, $8)
		on conflict (path) do update set
			srs = excluded.srs,
			geotransform = excluded.geotransform,
			width = excluded.width,
			height = excluded.height,
			bands = excluded.bands,
			data_type = excluded.data_type,
			nodata = excluded.nodata`,
		g.Path, g.SRS, string(gtJSON), g.Width, g.Height, g.Bands, g.DataType, g.NoData,
	)
	if err != nil {
		httpJSONError(response, err, 400)
		return
	}

	response.Write([]byte(`{ "status": "OK" }`))
}

func lookupHandler(response http.ResponseWriter, request *http.Request) {
	response.Header().Set("Content-Type", "application/json")

	var hash string
	if mc != nil {
		buff := md5.Sum([]byte(request.URL.RequestURI()))
		hash = hex.EncodeToString(buff[:])

		if cached, ok := mc.Get(hash); ok == nil {
			response.Write(cached.Value)
			return
		}
	}

	// The nullif() noise is to coerce Go's empty string zero values for
	// missing parameters into proper null arguments.
	rows, err := db.Query(
		`select path, srs, coalesce(geotransform::text, 'null'), width, height, bands, data_type, nodata
		from granules
		where ($1 = '' or path like $1 || '%')
		and ($2 = '' or srs = $2)
		order by path
		limit coalesce(nullif($3,'')::integer, 100)`,
		request.FormValue("prefix"),
		request.FormValue("srs"),
		request.FormValue("limit"),
	)
	if err != nil {
		httpJSONError(response, err, 400)
		return
	}
	defer rows.Close()

	granules := []Granule{}
	for rows.Next() {
		var g Granule
		var gtJSON string
		if err := rows.Scan(&g.Path, &g.SRS, &gtJSON, &g.Width, &g.Height, &g.Bands, &g.DataType, &g.NoData); err != nil {
			httpJSONError(response, err, 400)
			return
		}
		json.Unmarshal([]byte(gtJSON), &g.GeoTransform)
		granules = append(granules, g)
	}
	if err := rows.Err(); err != nil {
		httpJSONError(response, err, 400)
		return
	}

	payload, err := json.Marshal(granules)
	if err != nil {
		httpJSONError(response, err, 500)
		return
	}

	response.Write(payload)

	if mc != nil {
		// don't care about errors; memcache may not necessarily retain this anyway
		mc.Set(&memcache.Item{Key: hash, Value: payload})
	}
}

func main() {
	flag.Parse()

	log.Printf("dbUser %s dbName %s dbPool %d httpPort %d", *dbUser, *dbName, *dbPool, *httpPort)

	dbinfo := fmt.Sprintf("user=%s host=/var/run/postgresql dbname=%s sslmode=disable", *dbUser, *dbName)

	var err error
	db, err = sql.Open("postgres", dbinfo)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	db.SetMaxIdleConns(*dbPool)
	db.SetMaxOpenConns(*dbLimit)

	if *mcURI != "" {
		// lazy connection; errors returned in .Get
		mc = memcache.New(*mcURI)
	}

	http.HandleFunc("/register", registerHandler)
	http.HandleFunc("/", lookupHandler)

	listener, err := reuseport.Listen("tcp", fmt.Sprintf(":%d", *httpPort))
	if err != nil {
		log.Fatal(err)
	}
	log.Fatal(http.Serve(listener, nil))
}
