//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/adeolu/swiftride/internal/cache"
	"github.com/adeolu/swiftride/internal/config"
	"github.com/adeolu/swiftride/internal/database"
	"github.com/adeolu/swiftride/internal/models"
	"github.com/adeolu/swiftride/internal/repository"
	"github.com/adeolu/swiftride/internal/service"
)

var (
	firstNames = []string{"Adeola", "Chinedu", "Funke", "Emeka", "Ngozi", "Tunde", "Amina", "Segun", "Zainab", "Kelechi",
		"Bisi", "Obinna", "Yemi", "Chiamaka", "Femi", "Halima", "Uche", "Titi", "Ikenna", "Sade"}
	lastNames = []string{"Okafor", "Adebayo", "Eze", "Balogun", "Nwosu", "Lawal", "Okonkwo", "Adeleke", "Ibrahim", "Obi"}

	vehicleMakes = map[string][][2]string{
		models.VehicleClassBicycle:    {{"GIANT", "Escape 3"}, {"Trek", "FX 1"}},
		models.VehicleClassMotorcycle: {{"Bajaj", "Boxer"}, {"TVS", "HLX 125"}, {"Honda", "CG125"}},
		models.VehicleClassCar:        {{"Toyota", "Corolla"}, {"Honda", "Accord"}, {"Kia", "Rio"}, {"Hyundai", "Elantra"}},
	}
	colors = []string{"Black", "White", "Silver", "Red", "Blue"}
)

func main() {
	rand.Seed(time.Now().UnixNano())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	ctx := context.Background()

	userRepo := repository.NewUserRepository(db.DB)
	driverRepo := repository.NewDriverRepository(db.DB)
	vehicleRepo := repository.NewVehicleRepository(db.DB)
	rideRepo := repository.NewRideRepository(db.DB)
	rideCache := cache.NewRideCache(redis.Client, cfg.GeocodeCacheTTL)
	assignment := service.NewAssignmentService(db.DB, rideRepo, driverRepo, vehicleRepo, rideCache)

	log.Println("Creating 30 riders...")
	for i := 0; i < 30; i++ {
		user := &models.User{
			Name:  randomName(),
			Phone: fmt.Sprintf("+234801%07d", rand.Intn(10000000)),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Printf("create rider: %v", err)
		}
	}

	log.Println("Creating 20 vehicles...")
	classes := []string{models.VehicleClassBicycle, models.VehicleClassMotorcycle, models.VehicleClassCar}
	vehicleIDs := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		class := classes[rand.Intn(len(classes))]
		mm := vehicleMakes[class][rand.Intn(len(vehicleMakes[class]))]
		vehicle := &models.Vehicle{
			Class:        class,
			Make:         mm[0],
			Model:        mm[1],
			Year:         2015 + rand.Intn(10),
			LicensePlate: fmt.Sprintf("LAG-%03d-%c%c", rand.Intn(1000), 'A'+rand.Intn(26), 'A'+rand.Intn(26)),
			Color:        colors[rand.Intn(len(colors))],
		}
		if err := vehicleRepo.Create(ctx, vehicle); err != nil {
			log.Printf("create vehicle: %v", err)
			continue
		}
		vehicleIDs = append(vehicleIDs, vehicle.ID)
	}

	log.Println("Creating 15 drivers with vehicles...")
	for i := 0; i < 15 && i < len(vehicleIDs); i++ {
		driver := &models.Driver{
			Name:          randomName(),
			Phone:         fmt.Sprintf("+234802%07d", rand.Intn(10000000)),
			LicenseNumber: fmt.Sprintf("DL-%08d", rand.Intn(100000000)),
		}
		if err := driverRepo.Create(ctx, driver); err != nil {
			log.Printf("create driver: %v", err)
			continue
		}
		if err := driverRepo.UpdateStatus(ctx, driver.ID, models.DriverStatusActive); err != nil {
			log.Printf("activate driver: %v", err)
			continue
		}
		if _, err := assignment.BindVehicle(ctx, driver.ID, vehicleIDs[i]); err != nil {
			log.Printf("bind vehicle: %v", err)
		}
	}

	log.Println("Seeding complete")
}

func randomName() string {
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}
