package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- FARMER TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS farmer SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS farmer_id ON farmer TYPE string;
    DEFINE FIELD IF NOT EXISTS name ON farmer TYPE string;
    DEFINE FIELD IF NOT EXISTS mobile_no ON farmer TYPE string;
    DEFINE FIELD IF NOT EXISTS language ON farmer TYPE string DEFAULT "en";
    DEFINE FIELD IF NOT EXISTS state ON farmer TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS district ON farmer TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON farmer TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS farmer_id_idx ON farmer FIELDS farmer_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS farmer_mobile_idx ON farmer FIELDS mobile_no UNIQUE;

    -- ==========================================================================
    -- FARM TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS farm SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS farm_id ON farm TYPE string;
    DEFINE FIELD IF NOT EXISTS farmer_id ON farm TYPE string;
    DEFINE FIELD IF NOT EXISTS farm_name ON farm TYPE string;
    DEFINE FIELD IF NOT EXISTS size ON farm TYPE float;
    DEFINE FIELD IF NOT EXISTS state ON farm TYPE string;
    DEFINE FIELD IF NOT EXISTS district ON farm TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON farm TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS farm_id_idx ON farm FIELDS farm_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS farm_farmer_idx ON farm FIELDS farmer_id;

    -- ==========================================================================
    -- LOCATION TABLE (weather-alert topics, one per district/state pair)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS location SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS location_id ON location TYPE string;
    DEFINE FIELD IF NOT EXISTS district ON location TYPE string;
    DEFINE FIELD IF NOT EXISTS state ON location TYPE string;
    DEFINE FIELD IF NOT EXISTS firebase_topic ON location TYPE string;
    DEFINE INDEX IF NOT EXISTS location_pair_idx ON location FIELDS district, state UNIQUE;

    -- ==========================================================================
    -- CROP TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS crop SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS crop_id ON crop TYPE string;
    DEFINE FIELD IF NOT EXISTS farm_id ON crop TYPE string;
    DEFINE FIELD IF NOT EXISTS crop_name ON crop TYPE string;
    DEFINE FIELD IF NOT EXISTS crop_variety ON crop TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON crop TYPE string;
    DEFINE FIELD IF NOT EXISTS planted_at ON crop TYPE datetime;
    DEFINE FIELD IF NOT EXISTS previous_crop ON crop TYPE string;
    DEFINE FIELD IF NOT EXISTS previous_crop_yield ON crop TYPE string;
    DEFINE INDEX IF NOT EXISTS crop_id_idx ON crop FIELDS crop_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS crop_farm_idx ON crop FIELDS farm_id;

    -- ==========================================================================
    -- POST TABLE (social feed)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS post SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS post_id ON post TYPE string;
    DEFINE FIELD IF NOT EXISTS user_id ON post TYPE string;
    DEFINE FIELD IF NOT EXISTS content_url ON post TYPE string;
    DEFINE FIELD IF NOT EXISTS content_desc ON post TYPE string;
    DEFINE FIELD IF NOT EXISTS likes ON post TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS reports ON post TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS created_at ON post TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS post_id_idx ON post FIELDS post_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS post_created_idx ON post FIELDS created_at;

    -- ==========================================================================
    -- COMMENT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS comment SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS comment_id ON comment TYPE string;
    DEFINE FIELD IF NOT EXISTS post_id ON comment TYPE string;
    DEFINE FIELD IF NOT EXISTS user_id ON comment TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON comment TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON comment TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS comment_id_idx ON comment FIELDS comment_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS comment_post_idx ON comment FIELDS post_id, created_at;

    -- ==========================================================================
    -- CHAT_MESSAGE TABLE (per-user conversation history)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS chat_message SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON chat_message TYPE string;
    DEFINE FIELD IF NOT EXISTS role ON chat_message TYPE string ASSERT $value IN ["user", "assistant"];
    DEFINE FIELD IF NOT EXISTS content ON chat_message TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON chat_message TYPE datetime;
    DEFINE INDEX IF NOT EXISTS chat_user_time_idx ON chat_message FIELDS user_id, created_at;
`
