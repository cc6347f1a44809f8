package repository

import (
	"context"
	"time"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/database"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(store *database.Store) *UserRepository {
	return &UserRepository{
		collection: store.DB().Collection(database.UsersCollection),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, translate(err, "userRepo.CreateUser.InsertOne")
	}

	user.ID = result.InsertedID.(primitive.ObjectID)

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "userRepo.GetUserByEmail")
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "userRepo.GetUserByID")
}

func (r *UserRepository) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"verify_token": token}, "userRepo.GetUserByVerificationToken")
}

func (r *UserRepository) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"reset_token": token}, "userRepo.GetUserByResetToken")
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, op string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if err != mongo.ErrNoDocuments {
			logrus.WithFields(logrus.Fields{
				"op":    op,
				"error": err,
			}).Warn("Failed to find user")
		}
		return nil, translate(err, op)
	}
	return &user, nil
}

// UpdateUser applies a partial update and returns the updated document.
func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error) {
	update["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&user)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return nil, translate(err, "userRepo.UpdateUser")
	}

	logrus.WithField("userID", id.Hex()).Info("User updated successfully")
	return &user, nil
}

// UpdateLastActive stamps the user's last request time.
func (r *UserRepository) UpdateLastActive(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}})
	return translate(err, "userRepo.UpdateLastActive")
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{}, opts, "userRepo.GetAllUsers")
}

// GetUsersByIDs fetches user details for a list of ObjectIDs.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil, "userRepo.GetUsersByIDs")
}

// GetUsersByEmails returns the users registered under any of the given emails.
// Unknown emails are simply absent from the result.
func (r *UserRepository) GetUsersByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	if len(emails) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"email": bson.M{"$in": emails}}, nil, "userRepo.GetUsersByEmails")
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions, op string) ([]models.User, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	cursor, err := r.collection.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, translate(err, op)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translate(err, op+".Decode")
	}
	return users, nil
}
