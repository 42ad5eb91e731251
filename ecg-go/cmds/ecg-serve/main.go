package main

import (
	"log"
	"net/http"

	arg "github.com/alexflint/go-arg"
	"github.com/gorilla/mux"

	"github.com/heartscribe/heartscribe/ecg-go/web"
	"github.com/heartscribe/heartscribe/ecg-go/web/midware"
)

func main() {
	args := struct {
		Port      string `help:"address to listen on"`
		ImageDir  string `arg:"--image-dir" help:"directory holding generated ECG images"`
		Templates string `help:"directory holding the templates folder"`
	}{
		Port:      ":3031",
		ImageDir:  "./ecg_images",
		Templates: "./ecg-go/web",
	}
	arg.MustParse(&args)

	app := web.NewApp(args.ImageDir, http.Dir(args.Templates))

	r := mux.NewRouter()
	app.SetupRoutes(r)
	r.PathPrefix("/images/").Handler(
		http.StripPrefix("/images/", http.FileServer(http.Dir(args.ImageDir))))

	log.Println("listening on", args.Port)
	log.Fatal(http.ListenAndServe(args.Port, midware.Wrap(r)))
}
