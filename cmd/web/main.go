// @title           Apex Sports API
// @version         1.0
// @description     API маркетплейса спортивных коучей: поиск, бронирование, оплата.
// @host            localhost:4000
// @BasePath        /

package main

import "apexsports_backend/internal/app"

func main() {
	app.Run()
}
