package repository

import (
	"context"
	"time"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/database"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GroupRepository stores groups, their memberships and their messages.
type GroupRepository struct {
	groups   *mongo.Collection
	members  *mongo.Collection
	messages *mongo.Collection
}

func NewGroupRepository(store *database.Store) *GroupRepository {
	db := store.DB()
	return &GroupRepository{
		groups:   db.Collection(database.GroupsCollection),
		members:  db.Collection(database.GroupMembersCollection),
		messages: db.Collection(database.GroupMessagesCollection),
	}
}

func (r *GroupRepository) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	group.CreatedAt = time.Now().UTC()

	result, err := r.groups.InsertOne(ctx, group)
	if err != nil {
		return nil, translate(err, "groupRepo.CreateGroup")
	}
	group.ID = result.InsertedID.(primitive.ObjectID)
	return group, nil
}

func (r *GroupRepository) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var group models.Group
	if err := r.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&group); err != nil {
		return nil, translate(err, "groupRepo.GetGroupByID")
	}
	return &group, nil
}

func (r *GroupRepository) GetGroupsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	groups := []models.Group{}
	if len(ids) == 0 {
		return groups, nil
	}

	cursor, err := r.groups.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate(err, "groupRepo.GetGroupsByIDs")
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &groups); err != nil {
		return nil, translate(err, "groupRepo.GetGroupsByIDs.Decode")
	}
	return groups, nil
}

// AddMember inserts the membership if it is missing. It reports whether a new
// row was written; re-adding an existing member is a no-op.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	result, err := r.members.UpdateOne(ctx,
		bson.M{"group_id": groupID, "user_id": userID},
		bson.M{"$setOnInsert": bson.M{"joined_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if benignDuplicate(ctx, err) {
			return false, nil
		}
		return false, translate(err, "groupRepo.AddMember")
	}
	return result.UpsertedCount == 1, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	n, err := r.members.CountDocuments(ctx,
		bson.M{"group_id": groupID, "user_id": userID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "groupRepo.IsMember")
	}
	return n > 0, nil
}

// RemoveMember deletes the membership and reports whether it existed.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	result, err := r.members.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return false, translate(err, "groupRepo.RemoveMember")
	}
	return result.DeletedCount == 1, nil
}

// ListGroupIDsForUser returns the ids of every group userID currently belongs to.
func (r *GroupRepository) ListGroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.members.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, translate(err, "groupRepo.ListGroupIDsForUser")
	}
	defer cursor.Close(ctx)

	var memberships []models.GroupMember
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, translate(err, "groupRepo.ListGroupIDsForUser.Decode")
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.GroupID)
	}
	return ids, nil
}

// ListMemberIDs returns the user ids of the group's current members.
func (r *GroupRepository) ListMemberIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.members.Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, translate(err, "groupRepo.ListMemberIDs")
	}
	defer cursor.Close(ctx)

	var memberships []models.GroupMember
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, translate(err, "groupRepo.ListMemberIDs.Decode")
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// CountMembers returns the live member count of each group.
func (r *GroupRepository) CountMembers(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"group_id": bson.M{"$in": groupIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$group_id", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.members.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err, "groupRepo.CountMembers")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		GroupID primitive.ObjectID `bson:"_id"`
		Count   int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translate(err, "groupRepo.CountMembers.Decode")
	}
	for _, row := range rows {
		counts[row.GroupID] = row.Count
	}
	return counts, nil
}

func (r *GroupRepository) SendMessage(ctx context.Context, msg *models.GroupMessage) (*models.GroupMessage, error) {
	msg.CreatedAt = time.Now().UTC()
	msg.IsRead = false

	result, err := r.messages.InsertOne(ctx, msg)
	if err != nil {
		return nil, translate(err, "groupRepo.SendMessage")
	}
	msg.ID = result.InsertedID.(primitive.ObjectID)
	return msg, nil
}

// GetMessages returns one page of group messages, newest first.
func (r *GroupRepository) GetMessages(ctx context.Context, groupID primitive.ObjectID, limit, offset int) ([]models.GroupMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.messages.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, translate(err, "groupRepo.GetMessages")
	}
	defer cursor.Close(ctx)

	messages := []models.GroupMessage{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, translate(err, "groupRepo.GetMessages.Decode")
	}
	return messages, nil
}

// LastMessages returns the most recent message of each group that has one.
func (r *GroupRepository) LastMessages(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]models.GroupMessage, error) {
	last := make(map[primitive.ObjectID]models.GroupMessage, len(groupIDs))
	if len(groupIDs) == 0 {
		return last, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"group_id": bson.M{"$in": groupIDs}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$group", Value: bson.M{"_id": "$group_id", "last": bson.M{"$first": "$$ROOT"}}}},
	}
	cursor, err := r.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err, "groupRepo.LastMessages")
	}
	defer cursor.Close(ctx)

	var rows []struct {
		GroupID primitive.ObjectID  `bson:"_id"`
		Last    models.GroupMessage `bson:"last"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translate(err, "groupRepo.LastMessages.Decode")
	}
	for _, row := range rows {
		last[row.GroupID] = row.Last
	}
	return last, nil
}

func (r *GroupRepository) DeleteMembers(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	result, err := r.members.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, translate(err, "groupRepo.DeleteMembers")
	}
	return result.DeletedCount, nil
}

func (r *GroupRepository) DeleteMessages(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	result, err := r.messages.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, translate(err, "groupRepo.DeleteMessages")
	}
	return result.DeletedCount, nil
}

func (r *GroupRepository) DeleteGroup(ctx context.Context, groupID primitive.ObjectID) (bool, error) {
	result, err := r.groups.DeleteOne(ctx, bson.M{"_id": groupID})
	if err != nil {
		return false, translate(err, "groupRepo.DeleteGroup")
	}
	return result.DeletedCount == 1, nil
}

// benignDuplicate reports whether err is a duplicate key from a concurrent
// upsert of the same pair. Inside a transaction the server has already
// aborted, so the error must reach the caller.
func benignDuplicate(ctx context.Context, err error) bool {
	return mongo.IsDuplicateKeyError(err) && mongo.SessionFromContext(ctx) == nil
}
